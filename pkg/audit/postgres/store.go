// Package postgres stores analysis logs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sustactical/squadlink/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_logs (
  id BIGSERIAL PRIMARY KEY,
  request_id TEXT NOT NULL,
  soldier_id TEXT NOT NULL,
  status_summary TEXT NOT NULL,
  health_risk TEXT NOT NULL,
  immediate_action TEXT NOT NULL,
  model TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_analysis_logs_created ON analysis_logs (created_at);
CREATE INDEX IF NOT EXISTS idx_analysis_logs_soldier ON analysis_logs (soldier_id);
`

type Store struct {
	db *sql.DB
}

// Open connects using a lib/pq DSN and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres audit db: %w", err)
	}
	s, err := New(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate postgres audit db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Log(ctx context.Context, e models.AnalysisLog) error {
	const q = `
INSERT INTO analysis_logs
  (request_id, soldier_id, status_summary, health_risk, immediate_action, model, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, q, e.RequestID, e.SoldierID, e.StatusSummary,
		e.HealthRisk, e.ImmediateAction, e.Model, createdAt)
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
LIMIT $1;
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
