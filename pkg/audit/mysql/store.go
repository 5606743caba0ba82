// Package mysql stores analysis logs in MySQL.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"

	"github.com/sustactical/squadlink/pkg/models"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS analysis_logs (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  request_id VARCHAR(64) NOT NULL,
  soldier_id VARCHAR(64) NOT NULL,
  status_summary TEXT NOT NULL,
  health_risk TEXT NOT NULL,
  immediate_action TEXT NOT NULL,
  model VARCHAR(128),
  created_at DATETIME(3) NOT NULL,
  INDEX idx_analysis_logs_created (created_at),
  INDEX idx_analysis_logs_soldier (soldier_id)
)`}

type Store struct {
	db *sql.DB
}

// Open connects using a go-sql-driver DSN. parseTime is forced on so
// created_at scans into time.Time.
func Open(dsn string) (*Store, error) {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	connector, err := drv.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql audit db: %w", err)
	}
	db := sql.OpenDB(connector)
	s, err := New(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate mysql audit db: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Log(ctx context.Context, e models.AnalysisLog) error {
	const q = `
INSERT INTO analysis_logs
  (request_id, soldier_id, status_summary, health_risk, immediate_action, model, created_at)
VALUES (?,?,?,?,?,?,?);
`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, q, e.RequestID, e.SoldierID, e.StatusSummary,
		e.HealthRisk, e.ImmediateAction, e.Model, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("insert analysis log: %w", err)
	}
	return nil
}

// Recent returns records ordered by created_at desc.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.AnalysisLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, request_id, soldier_id, status_summary, health_risk, immediate_action, COALESCE(model, ''), created_at
FROM analysis_logs
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis logs: %w", err)
	}
	defer rows.Close()

	out := []models.AnalysisLog{}
	for rows.Next() {
		var e models.AnalysisLog
		if err := rows.Scan(&e.ID, &e.RequestID, &e.SoldierID, &e.StatusSummary,
			&e.HealthRisk, &e.ImmediateAction, &e.Model, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }
