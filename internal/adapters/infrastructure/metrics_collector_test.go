package infrastructure

import (
	"context"
	"testing"

	"cardbinder.app/internal/adapters/external"
	"cardbinder.app/internal/mocks"
	"cardbinder.app/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollectorAdapter_GetMetrics(t *testing.T) {
	cacheMetrics := NewCacheMetricsAdapter()
	cacheMetrics.RecordHit(ports.CacheTierMemory)
	cacheMetrics.RecordMiss()

	ownershipMetrics := NewOwnershipMetricsAdapter()
	ownershipMetrics.SubscriptionOpened()

	collector := NewMetricsCollectorAdapter(MetricsCollectorConfig{
		CacheMetrics:    cacheMetrics,
		CatalogProvider: external.NewCatalogProviderChain(nil, 10, nil, mocks.NewLogger()),
		Subscriptions:   ownershipMetrics,
	})

	metrics, err := collector.GetMetrics(context.Background())
	require.NoError(t, err)

	cache := metrics["cache"].(map[string]interface{})
	assert.Equal(t, int64(1), cache["hits"])
	assert.Equal(t, int64(2), cache["total_ops"])
	assert.Equal(t, 0.5, cache["hit_ratio"])

	catalog := metrics["catalog"].(map[string]interface{})
	assert.Equal(t, 10, catalog["requests_per_sec"])

	ownership := metrics["ownership"].(map[string]interface{})
	assert.Equal(t, int64(1), ownership["active_subscriptions"])
}

func TestMetricsCollectorAdapter_EmptySources(t *testing.T) {
	metrics, err := NewMetricsCollectorAdapter(MetricsCollectorConfig{}).GetMetrics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metrics)
}
