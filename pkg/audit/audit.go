// Package audit persists successful tactical analyses for later review.
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/audit/mysql"
	"github.com/sustactical/squadlink/pkg/audit/postgres"
	"github.com/sustactical/squadlink/pkg/models"
)

// RecentLimit is the number of records served by the logs endpoint.
const RecentLimit = 50

// Store is an append-only analysis log.
type Store interface {
	Log(ctx context.Context, entry models.AnalysisLog) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]models.AnalysisLog, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Driver. The sqlite driver is the
// default and uses cfg.DSN as a file path.
func Open(cfg models.AuditConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return New(cfg, logger)
	case "postgres":
		return postgres.Open(cfg.DSN)
	case "mysql":
		return mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit driver %q", cfg.Driver)
	}
}
