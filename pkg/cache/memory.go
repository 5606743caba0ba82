package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sustactical/squadlink/pkg/models"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]models.CacheEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string]models.CacheEntry)}
}

func (m *Memory) Get(_ context.Context, bucket, key string) (models.CacheEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.buckets[bucket][key]
	if !ok {
		return models.CacheEntry{}, false, nil
	}
	e.Value = append([]byte(nil), e.Value...)
	return e, true, nil
}

func (m *Memory) Put(_ context.Context, entry models.CacheEntry) error {
	entry.Value = append([]byte(nil), entry.Value...)
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[entry.Bucket]
	if !ok {
		b = make(map[string]models.CacheEntry)
		m.buckets[entry.Bucket] = b
	}
	b[entry.Key] = entry
	return nil
}

func (m *Memory) Count(_ context.Context, bucket string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if bucket != "" {
		return int64(len(m.buckets[bucket])), nil
	}
	var n int64
	for _, b := range m.buckets {
		n += int64(len(b))
	}
	return n, nil
}

func (m *Memory) Clear(_ context.Context, bucket string, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for name, b := range m.buckets {
		if bucket != "" && name != bucket {
			continue
		}
		for k, e := range b {
			if before.IsZero() || e.StoredAt.Before(before) {
				delete(b, k)
				n++
			}
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
