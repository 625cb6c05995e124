package infrastructure

import (
	"sync"
	"time"

	"cardbinder.app/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricsCollector struct {
	CacheHits            *prometheus.CounterVec
	CacheMisses          prometheus.Counter
	CacheEvictions       prometheus.Counter
	CachePersistFailures *prometheus.CounterVec
	CacheHitRatio        prometheus.Gauge

	CatalogFetches  *prometheus.CounterVec
	CatalogDuration *prometheus.HistogramVec

	OwnershipWrites       *prometheus.CounterVec
	OwnershipRecords      *prometheus.CounterVec
	OwnershipSubscriptions prometheus.Gauge
}

var (
	globalCollector     *metricsCollector
	globalCollectorOnce sync.Once
)

// getCollector registers the process-wide collectors on first use
func getCollector() *metricsCollector {
	globalCollectorOnce.Do(func() {
		globalCollector = &metricsCollector{
			CacheHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardbinder_cache_hits_total",
					Help: "The total number of cache hits by tier",
				},
				[]string{"tier"},
			),
			CacheMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "cardbinder_cache_misses_total",
					Help: "The total number of cache misses",
				},
			),
			CacheEvictions: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "cardbinder_cache_evictions_total",
					Help: "Entries evicted from the memory tier at capacity",
				},
			),
			CachePersistFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardbinder_cache_persist_failures_total",
					Help: "Failed operations against the persisted cache tier",
				},
				[]string{"operation"},
			),
			CacheHitRatio: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "cardbinder_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total lookups)",
				},
			),
			CatalogFetches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardbinder_catalog_fetches_total",
					Help: "Outbound catalog provider calls",
				},
				[]string{"provider", "operation", "result"},
			),
			CatalogDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cardbinder_catalog_fetch_duration_seconds",
					Help:    "Catalog provider call duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider", "operation"},
			),
			OwnershipWrites: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardbinder_ownership_writes_total",
					Help: "Ownership write transactions",
				},
				[]string{"operation", "result"},
			),
			OwnershipRecords: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cardbinder_ownership_records_total",
					Help: "Ownership records touched by committed writes",
				},
				[]string{"operation"},
			),
			OwnershipSubscriptions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "cardbinder_ownership_subscriptions",
					Help: "Live ownership subscriptions",
				},
			),
		}
	})
	return globalCollector
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// CacheMetricsAdapter implements the CacheMetrics port on Prometheus counters
// and keeps local totals for the stats endpoint.
type CacheMetricsAdapter struct {
	mu              sync.RWMutex
	hits            int64
	misses          int64
	evictions       int64
	persistFailures int64
	lastUpdated     time.Time
	collector       *metricsCollector
}

func NewCacheMetricsAdapter() *CacheMetricsAdapter {
	return &CacheMetricsAdapter{collector: getCollector()}
}

func (m *CacheMetricsAdapter) RecordHit(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.lastUpdated = time.Now()
	m.collector.CacheHits.WithLabelValues(tier).Inc()
	m.updateHitRatio()
}

func (m *CacheMetricsAdapter) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.lastUpdated = time.Now()
	m.collector.CacheMisses.Inc()
	m.updateHitRatio()
}

func (m *CacheMetricsAdapter) RecordEviction() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictions++
	m.collector.CacheEvictions.Inc()
}

func (m *CacheMetricsAdapter) RecordPersistFailure(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persistFailures++
	m.collector.CachePersistFailures.WithLabelValues(operation).Inc()
}

// updateHitRatio must be called while holding the mutex
func (m *CacheMetricsAdapter) updateHitRatio() {
	if total := m.hits + m.misses; total > 0 {
		m.collector.CacheHitRatio.Set(float64(m.hits) / float64(total))
	}
}

func (m *CacheMetricsAdapter) GetStats() ports.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.hits + m.misses
	var ratio float64
	if total > 0 {
		ratio = float64(m.hits) / float64(total)
	}

	return ports.CacheStats{
		Hits:            m.hits,
		Misses:          m.misses,
		TotalOps:        total,
		HitRatio:        ratio,
		Evictions:       m.evictions,
		PersistFailures: m.persistFailures,
		LastUpdated:     m.lastUpdated,
	}
}

// CatalogMetricsAdapter implements the CatalogMetrics port
type CatalogMetricsAdapter struct {
	collector *metricsCollector
}

func NewCatalogMetricsAdapter() *CatalogMetricsAdapter {
	return &CatalogMetricsAdapter{collector: getCollector()}
}

func (m *CatalogMetricsAdapter) RecordFetch(provider, operation string, success bool, duration time.Duration) {
	m.collector.CatalogFetches.WithLabelValues(provider, operation, resultLabel(success)).Inc()
	m.collector.CatalogDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// OwnershipMetricsAdapter implements the OwnershipMetrics port
type OwnershipMetricsAdapter struct {
	mu            sync.Mutex
	subscriptions int64
	collector     *metricsCollector
}

func NewOwnershipMetricsAdapter() *OwnershipMetricsAdapter {
	return &OwnershipMetricsAdapter{collector: getCollector()}
}

func (m *OwnershipMetricsAdapter) RecordWrite(operation string, records int, success bool) {
	m.collector.OwnershipWrites.WithLabelValues(operation, resultLabel(success)).Inc()
	if success {
		m.collector.OwnershipRecords.WithLabelValues(operation).Add(float64(records))
	}
}

func (m *OwnershipMetricsAdapter) SubscriptionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions++
	m.collector.OwnershipSubscriptions.Inc()
}

func (m *OwnershipMetricsAdapter) SubscriptionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions--
	m.collector.OwnershipSubscriptions.Dec()
}

// ActiveSubscriptions reports subscriptions opened through this adapter and not yet closed
func (m *OwnershipMetricsAdapter) ActiveSubscriptions() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscriptions
}
