package ports

import (
	"context"
	"time"
)

// Cache tiers reported to metrics
const (
	CacheTierMemory    = "memory"
	CacheTierPersisted = "persisted"
)

// KeyValueStore is the persisted cache tier: string keys, opaque byte values.
// Get returns a NotFoundError when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	Hits            int64
	Misses          int64
	TotalOps        int64
	HitRatio        float64
	Evictions       int64
	PersistFailures int64
	LastUpdated     time.Time
}

// CacheMetrics defines the contract for cache performance tracking
type CacheMetrics interface {
	RecordHit(tier string)
	RecordMiss()
	RecordEviction()
	RecordPersistFailure(operation string)
	GetStats() CacheStats
}
