package infrastructure

import (
	"context"

	"cardbinder.app/internal/ports"
)

// SubscriptionCounter reports live ownership subscriptions
type SubscriptionCounter interface {
	ActiveSubscriptions() int64
}

// MetricsCollectorAdapter aggregates the service counters for the JSON metrics endpoint
type MetricsCollectorAdapter struct {
	cacheMetrics    ports.CacheMetrics
	catalogProvider ports.CatalogProviderManager
	subscriptions   SubscriptionCounter
}

// MetricsCollectorConfig holds configuration for creating the metrics collector
type MetricsCollectorConfig struct {
	CacheMetrics    ports.CacheMetrics
	CatalogProvider ports.CatalogProviderManager
	Subscriptions   SubscriptionCounter
}

// NewMetricsCollectorAdapter creates a new metrics collector adapter
func NewMetricsCollectorAdapter(config MetricsCollectorConfig) *MetricsCollectorAdapter {
	return &MetricsCollectorAdapter{
		cacheMetrics:    config.CacheMetrics,
		catalogProvider: config.CatalogProvider,
		subscriptions:   config.Subscriptions,
	}
}

// GetMetrics returns aggregated metrics from all monitored services
func (m *MetricsCollectorAdapter) GetMetrics(ctx context.Context) (map[string]interface{}, error) {
	metrics := map[string]interface{}{}

	if m.catalogProvider != nil {
		metrics["catalog"] = m.catalogProvider.GetProviderInfo()
	}

	if m.cacheMetrics != nil {
		stats := m.cacheMetrics.GetStats()
		metrics["cache"] = map[string]interface{}{
			"hits":             stats.Hits,
			"misses":           stats.Misses,
			"total_ops":        stats.TotalOps,
			"hit_ratio":        stats.HitRatio,
			"evictions":        stats.Evictions,
			"persist_failures": stats.PersistFailures,
			"updated":          stats.LastUpdated,
		}
	}

	if m.subscriptions != nil {
		metrics["ownership"] = map[string]interface{}{
			"active_subscriptions": m.subscriptions.ActiveSubscriptions(),
		}
	}

	return metrics, nil
}
