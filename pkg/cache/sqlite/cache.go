// Package sqlite implements cache.Store on an embedded SQLite database so
// cached analyses survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sustactical/squadlink/pkg/models"
)

// Store is a cache.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	bucket TEXT NOT NULL,
	cache_key TEXT NOT NULL,
	value BLOB NOT NULL,
	stored_at INTEGER NOT NULL,
	PRIMARY KEY (bucket, cache_key)
);
`

// New opens (or creates) the cache database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Store{db: db}, nil
}

// Get retrieves an entry regardless of age; freshness is the caller's call.
func (s *Store) Get(ctx context.Context, bucket, key string) (models.CacheEntry, bool, error) {
	e := models.CacheEntry{Bucket: bucket, Key: key}
	var storedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, stored_at FROM cache_entries WHERE bucket = ? AND cache_key = ?`,
		bucket, key,
	).Scan(&e.Value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CacheEntry{}, false, nil
	}
	if err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("cache get: %w", err)
	}
	e.StoredAt = time.Unix(0, storedAt).UTC()
	return e, true, nil
}

// Put stores an entry, replacing any previous one for the same key.
func (s *Store) Put(ctx context.Context, e models.CacheEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (bucket, cache_key, value, stored_at) VALUES (?, ?, ?, ?)`,
		e.Bucket, e.Key, e.Value, e.StoredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Count returns the number of entries in bucket, or all entries if bucket is empty.
func (s *Store) Count(ctx context.Context, bucket string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE ? = '' OR bucket = ?`, bucket, bucket,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Clear removes entries stored before the cutoff. A zero cutoff removes all
// entries in the bucket.
func (s *Store) Clear(ctx context.Context, bucket string, before time.Time) (int64, error) {
	q := `DELETE FROM cache_entries WHERE (? = '' OR bucket = ?)`
	args := []any{bucket, bucket}
	if !before.IsZero() {
		q += ` AND stored_at < ?`
		args = append(args, before.UnixNano())
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
