package models

import "time"

// CacheEntry is a stored value with its insertion time.
type CacheEntry struct {
	Bucket   string    `json:"bucket"`
	Key      string    `json:"key"`
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// CacheStats reports cache performance metrics.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
