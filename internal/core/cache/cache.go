package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
)

// Cache is a two-tier TTL cache: a bounded in-process map in front of a persisted
// key/value store. The persisted tier is best-effort; its failures are logged and
// never reach callers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // insertion order, front is oldest

	store   ports.KeyValueStore
	logger  ports.Logger
	metrics ports.CacheMetrics

	namespace     string
	capacity      int
	defaultTTL    time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

// Dependencies wires a Cache
type Dependencies struct {
	Store   ports.KeyValueStore
	Logger  ports.Logger
	Metrics ports.CacheMetrics
}

// Options tune a Cache; zero values select the defaults
type Options struct {
	Namespace     string
	Capacity      int
	DefaultTTL    time.Duration
	SweepInterval time.Duration
	Clock         func() time.Time
}

func New(deps Dependencies, opts Options) (*Cache, error) {
	if deps.Store == nil {
		return nil, errors.NewValidationError("persisted store is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	c := &Cache{
		entries:       make(map[string]*list.Element),
		order:         list.New(),
		store:         deps.Store,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		namespace:     opts.Namespace,
		capacity:      opts.Capacity,
		defaultTTL:    opts.DefaultTTL,
		sweepInterval: opts.SweepInterval,
		now:           opts.Clock,
	}

	if c.namespace == "" {
		c.namespace = DefaultNamespace
	}
	if c.capacity <= 0 {
		c.capacity = DefaultCapacity
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = DefaultTTL
	}
	if c.sweepInterval <= 0 {
		c.sweepInterval = DefaultSweepInterval
	}
	if c.now == nil {
		c.now = time.Now
	}

	return c, nil
}

// Get returns the cached value for key. The fast tier is checked first; a valid
// persisted entry is promoted back into the fast tier before it is returned,
// unless a newer entry reached the fast tier in the meantime.
// Expired entries are removed from the tier they were found in.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	now := c.now()

	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*Entry)
		if entry.IsValid(now) {
			c.mu.Unlock()
			c.recordHit(ports.CacheTierMemory)
			return entry.Value, true
		}
		c.removeElement(elem)
	}
	c.mu.Unlock()

	entry, ok := c.loadPersisted(ctx, key, now)
	if !ok {
		c.recordMiss()
		return nil, false
	}

	c.mu.Lock()
	// A Set that landed while the store was read wins over the older persisted copy.
	if elem, ok := c.entries[key]; ok {
		current := elem.Value.(*Entry)
		if !current.StoredAt.Before(entry.StoredAt) && current.IsValid(now) {
			c.mu.Unlock()
			c.recordHit(ports.CacheTierMemory)
			return current.Value, true
		}
	}
	c.insert(entry)
	c.mu.Unlock()

	c.logger.Debug("Promoted persisted cache entry", ports.F("key", key))
	c.recordHit(ports.CacheTierPersisted)
	return entry.Value, true
}

// Set stores value under key in both tiers, replacing any previous entry.
// A ttl <= 0 selects the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	entry := &Entry{
		Key:      key,
		Value:    value,
		StoredAt: c.now(),
		TTL:      ttl,
	}

	c.mu.Lock()
	c.insert(entry)
	c.mu.Unlock()

	raw, err := encodeEntry(entry)
	if err == nil {
		err = c.store.Set(ctx, c.storageKey(key), raw)
	}
	if err != nil {
		c.logger.Warn("Persisted cache write failed, keeping memory copy only",
			ports.F("key", key),
			ports.F("error", err))
		c.recordPersistFailure("set")
		// An older persisted copy must not resurface after this entry leaves memory.
		if delErr := c.store.Delete(ctx, c.storageKey(key)); delErr != nil && !errors.IsNotFoundError(delErr) {
			c.logger.Debug("Failed to drop stale persisted cache entry",
				ports.F("key", key),
				ports.F("error", delErr))
		}
	}
}

// Clear empties the fast tier and removes every persisted key under the cache namespace
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	keys, err := c.store.Keys(ctx, c.namespace)
	if err != nil {
		c.logger.Warn("Failed to list persisted cache entries for clear", ports.F("error", err))
		c.recordPersistFailure("keys")
		return
	}

	for _, storageKey := range keys {
		if err := c.store.Delete(ctx, storageKey); err != nil && !errors.IsNotFoundError(err) {
			c.logger.Warn("Failed to delete persisted cache entry",
				ports.F("key", storageKey),
				ports.F("error", err))
			c.recordPersistFailure("delete")
		}
	}

	c.logger.Info("Cache cleared", ports.F("persisted_removed", len(keys)))
}

// Cleanup removes every expired entry from both tiers and returns how many were removed
func (c *Cache) Cleanup(ctx context.Context) int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if !elem.Value.(*Entry).IsValid(now) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	c.mu.Unlock()

	keys, err := c.store.Keys(ctx, c.namespace)
	if err != nil {
		c.logger.Warn("Failed to list persisted cache entries for cleanup", ports.F("error", err))
		c.recordPersistFailure("keys")
		return removed
	}

	for _, storageKey := range keys {
		raw, err := c.store.Get(ctx, storageKey)
		if err != nil {
			continue
		}
		entry, err := decodeEntry(c.cacheKey(storageKey), raw)
		if err == nil && entry.IsValid(now) {
			continue
		}
		if err := c.store.Delete(ctx, storageKey); err != nil && !errors.IsNotFoundError(err) {
			c.recordPersistFailure("delete")
			continue
		}
		removed++
	}

	return removed
}

// Stats reports tier sizes. A persisted tier that cannot be listed reports zero.
func (c *Cache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	memoryCount := len(c.entries)
	c.mu.Unlock()

	persistedCount := 0
	if keys, err := c.store.Keys(ctx, c.namespace); err == nil {
		persistedCount = len(keys)
	} else {
		c.logger.Warn("Failed to count persisted cache entries", ports.F("error", err))
	}

	return Stats{
		MemoryCount:    memoryCount,
		PersistedCount: persistedCount,
		Capacity:       c.capacity,
	}
}

// Run sweeps expired entries every sweep interval until ctx is cancelled
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	c.logger.Info("Cache sweeper started", ports.F("interval", c.sweepInterval.String()))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Cache sweeper stopped")
			return
		case <-ticker.C:
			removed := c.Cleanup(ctx)
			if removed > 0 {
				c.logger.Debug("Cache sweep removed expired entries", ports.F("removed", removed))
			}
		}
	}
}

// Namespace returns the persisted key prefix
func (c *Cache) Namespace() string {
	return c.namespace
}

func (c *Cache) loadPersisted(ctx context.Context, key string, now time.Time) (*Entry, bool) {
	storageKey := c.storageKey(key)

	raw, err := c.store.Get(ctx, storageKey)
	if err != nil {
		if !errors.IsNotFoundError(err) {
			c.logger.Warn("Persisted cache read failed", ports.F("key", key), ports.F("error", err))
			c.recordPersistFailure("get")
		}
		return nil, false
	}

	entry, err := decodeEntry(key, raw)
	if err != nil || !entry.IsValid(now) {
		if err != nil {
			c.logger.Warn("Dropping unreadable persisted cache entry", ports.F("key", key), ports.F("error", err))
		}
		if delErr := c.store.Delete(ctx, storageKey); delErr != nil && !errors.IsNotFoundError(delErr) {
			c.recordPersistFailure("delete")
		}
		return nil, false
	}

	return entry, true
}

// insert places entry at the back of the insertion order, evicting the oldest
// entries while the fast tier is full. Caller holds c.mu.
func (c *Cache) insert(entry *Entry) {
	if elem, ok := c.entries[entry.Key]; ok {
		c.removeElement(elem)
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		c.removeElement(oldest)
		if c.metrics != nil {
			c.metrics.RecordEviction()
		}
	}

	c.entries[entry.Key] = c.order.PushBack(entry)
}

// removeElement drops elem from the fast tier. Caller holds c.mu.
func (c *Cache) removeElement(elem *list.Element) {
	entry := c.order.Remove(elem).(*Entry)
	delete(c.entries, entry.Key)
}

func (c *Cache) storageKey(key string) string {
	return c.namespace + key
}

func (c *Cache) cacheKey(storageKey string) string {
	return strings.TrimPrefix(storageKey, c.namespace)
}

func (c *Cache) recordHit(tier string) {
	if c.metrics != nil {
		c.metrics.RecordHit(tier)
	}
}

func (c *Cache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordMiss()
	}
}

func (c *Cache) recordPersistFailure(operation string) {
	if c.metrics != nil {
		c.metrics.RecordPersistFailure(operation)
	}
}
