package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sustactical/squadlink/pkg/models"
)

// Logger writes and queries analysis logs in a SQLite database.
type Logger struct {
	db     *sql.DB
	cfg    models.AuditConfig
	logger *zap.Logger
	done   chan struct{}
	wg     sync.WaitGroup
}

// New opens the SQLite database at cfg.DSN, creates the schema and starts
// the retention loop when cfg.RetentionDays > 0.
func New(cfg models.AuditConfig, logger *zap.Logger) (*Logger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", cfg.DSN+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	l := &Logger{
		db:     db,
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}

	if cfg.RetentionDays > 0 {
		l.wg.Add(1)
		go l.retentionLoop()
	}

	return l, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analysis_logs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id       TEXT NOT NULL,
		soldier_id       TEXT NOT NULL,
		status_summary   TEXT NOT NULL,
		health_risk      TEXT NOT NULL,
		immediate_action TEXT NOT NULL,
		model            TEXT,
		created_at       INTEGER NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_analysis_logs_created ON analysis_logs(created_at)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_analysis_logs_soldier ON analysis_logs(soldier_id)`)
	return err
}

// Log inserts an analysis record. created_at defaults to now.
func (l *Logger) Log(ctx context.Context, entry models.AnalysisLog) error {
	if l == nil || l.db == nil {
		return nil
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO analysis_logs
		(request_id, soldier_id, status_summary, health_risk, immediate_action, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID, entry.SoldierID, entry.StatusSummary, entry.HealthRisk,
		entry.ImmediateAction, entry.Model, createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis log: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]models.AnalysisLog, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, request_id, soldier_id, status_summary, health_risk, immediate_action, model, created_at
		 FROM analysis_logs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis logs: %w", err)
	}
	defer rows.Close()

	entries := []models.AnalysisLog{}
	for rows.Next() {
		var e models.AnalysisLog
		var model sql.NullString
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.RequestID, &e.SoldierID, &e.StatusSummary,
			&e.HealthRisk, &e.ImmediateAction, &model, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analysis log: %w", err)
		}
		e.Model = model.String
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns the number of logged analyses grouped by soldier and day.
func (l *Logger) Stats(ctx context.Context) ([]models.AuditStat, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT soldier_id, date(created_at / 1000, 'unixepoch') AS day, count(*) AS cnt
		 FROM analysis_logs GROUP BY soldier_id, day ORDER BY day DESC, soldier_id`)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	defer rows.Close()

	var stats []models.AuditStat
	for rows.Next() {
		var s models.AuditStat
		var day sql.NullString
		if err := rows.Scan(&s.SoldierID, &day, &s.Count); err != nil {
			return nil, fmt.Errorf("scan audit stat: %w", err)
		}
		s.Day = day.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes entries older than the configured retention period.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -l.cfg.RetentionDays)
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM analysis_logs WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("audit cleanup: %w", err)
	}
	return res.RowsAffected()
}

func (l *Logger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close stops the retention goroutine and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			n, err := l.Cleanup(context.Background())
			if err != nil {
				l.logger.Warn("audit retention cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				l.logger.Info("audit retention cleanup", zap.Int64("deleted", n))
			}
		}
	}
}
