// Package cache provides a TTL cache over a pluggable entry store.
package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/models"
)

// Bucket names and defaults used by the analysis service.
const (
	BucketAnalysis = "analysis"
	BucketBriefing = "briefing"

	BriefingKey = "global-briefing"

	DefaultAnalysisTTL = 5 * time.Minute
	DefaultBriefingTTL = 2 * time.Minute
)

// Store persists raw entries keyed by (bucket, key). Implementations must be
// safe for concurrent use. A Put replaces any existing entry for the key.
type Store interface {
	Get(ctx context.Context, bucket, key string) (models.CacheEntry, bool, error)
	Put(ctx context.Context, entry models.CacheEntry) error
	// Count returns the number of entries in bucket, or in all buckets if bucket is empty.
	Count(ctx context.Context, bucket string) (int64, error)
	// Clear deletes entries in bucket (all buckets if empty) stored before the
	// cutoff. A zero cutoff deletes everything.
	Clear(ctx context.Context, bucket string, before time.Time) (int64, error)
	Close() error
}

// AnalysisKey identifies a subject in a particular status, so a status change
// never serves an analysis made for the previous status.
func AnalysisKey(s models.Subject) string {
	return s.ID + string(s.Status)
}

// TTL is a typed view of one bucket of a Store. Values are JSON encoded.
type TTL[V any] struct {
	store  Store
	bucket string
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTTL returns a cache over store's bucket. A nil clock uses the system clock.
func NewTTL[V any](store Store, bucket string, ttl time.Duration, clk clock.Clock, logger *zap.Logger) *TTL[V] {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TTL[V]{
		store:  store,
		bucket: bucket,
		ttl:    ttl,
		clock:  clk,
		logger: logger.With(zap.String("bucket", bucket)),
	}
}

// Get returns the value for key if it was stored less than ttl ago.
// Store failures count as a miss.
func (c *TTL[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	entry, ok, err := c.store.Get(ctx, c.bucket, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return zero, false
	}
	if !ok || c.clock.Now().Sub(entry.StoredAt) >= c.ttl {
		c.misses.Add(1)
		return zero, false
	}
	var v V
	if err := json.Unmarshal(entry.Value, &v); err != nil {
		c.logger.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return v, true
}

// Put stores v under key, replacing any previous entry. Failures are logged only.
func (c *TTL[V]) Put(ctx context.Context, key string, v V) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	err = c.store.Put(ctx, models.CacheEntry{
		Bucket:   c.bucket,
		Key:      key,
		Value:    data,
		StoredAt: c.clock.Now(),
	})
	if err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Stats reports hit/miss counters for this process and the bucket's entry count.
func (c *TTL[V]) Stats(ctx context.Context) (models.CacheStats, error) {
	n, err := c.store.Count(ctx, c.bucket)
	if err != nil {
		return models.CacheStats{}, err
	}
	return models.CacheStats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}, nil
}

// TTL returns the configured time to live.
func (c *TTL[V]) TTL() time.Duration { return c.ttl }
