package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sustactical/squadlink/pkg/cache"
	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/models"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache_test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Put(ctx, models.CacheEntry{Bucket: cache.BucketAnalysis, Key: "ARMY-842ACTIVE", Value: []byte(`{"a":1}`), StoredAt: t0})
	if err != nil {
		t.Fatal(err)
	}

	e, ok, err := s.Get(ctx, cache.BucketAnalysis, "ARMY-842ACTIVE")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(e.Value) != `{"a":1}` {
		t.Errorf("unexpected value: %s", e.Value)
	}
	if !e.StoredAt.Equal(t0) {
		t.Errorf("stored_at = %v, want %v", e.StoredAt, t0)
	}

	// Same key in another bucket is a different entry.
	_, ok, err = s.Get(ctx, cache.BucketBriefing, "ARMY-842ACTIVE")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected miss for different bucket")
	}
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Put(ctx, models.CacheEntry{Bucket: "b", Key: "k", Value: []byte("one"), StoredAt: t0})
	_ = s.Put(ctx, models.CacheEntry{Bucket: "b", Key: "k", Value: []byte("two"), StoredAt: t0.Add(time.Minute)})

	e, _, _ := s.Get(ctx, "b", "k")
	if string(e.Value) != "two" {
		t.Errorf("expected replaced value, got %s", e.Value)
	}
	n, _ := s.Count(ctx, "b")
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Put(ctx, models.CacheEntry{Bucket: "analysis", Key: "old", Value: []byte("x"), StoredAt: t0})
	_ = s.Put(ctx, models.CacheEntry{Bucket: "analysis", Key: "new", Value: []byte("x"), StoredAt: t0.Add(time.Hour)})
	_ = s.Put(ctx, models.CacheEntry{Bucket: "briefing", Key: "old", Value: []byte("x"), StoredAt: t0})

	n, err := s.Clear(ctx, "analysis", t0.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired entry removed, got %d", n)
	}

	total, _ := s.Count(ctx, "")
	if total != 2 {
		t.Errorf("expected 2 entries left, got %d", total)
	}

	if _, err := s.Clear(ctx, "", time.Time{}); err != nil {
		t.Fatal(err)
	}
	total, _ = s.Count(ctx, "")
	if total != 0 {
		t.Errorf("expected 0 entries after clear, got %d", total)
	}
}

func TestTTLOverSQLite(t *testing.T) {
	s := newTestStore(t)
	clk := clock.NewManual(t0)
	c := cache.NewTTL[models.AnalysisResult](s, cache.BucketAnalysis, 5*time.Minute, clk, nil)
	ctx := context.Background()

	c.Put(ctx, "NCC-990DISTRESS", models.AnalysisResult{StatusSummary: "Critical", HealthRisk: "High", ImmediateAction: "Evacuate"})

	got, ok := c.Get(ctx, "NCC-990DISTRESS")
	if !ok || got.ImmediateAction != "Evacuate" {
		t.Fatalf("expected hit, got %+v ok=%v", got, ok)
	}

	clk.Advance(5 * time.Minute)
	if _, ok := c.Get(ctx, "NCC-990DISTRESS"); ok {
		t.Error("expected miss after TTL expiration")
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
