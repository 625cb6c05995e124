package infrastructure

import (
	"testing"
	"time"

	"cardbinder.app/internal/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCacheMetricsAdapter(t *testing.T) {
	metrics := NewCacheMetricsAdapter()

	t.Run("Initial state", func(t *testing.T) {
		stats := metrics.GetStats()
		assert.Zero(t, stats.Hits)
		assert.Zero(t, stats.Misses)
		assert.Zero(t, stats.TotalOps)
		assert.Zero(t, stats.HitRatio)
	})

	t.Run("Record hits and misses", func(t *testing.T) {
		memoryBefore := testutil.ToFloat64(metrics.collector.CacheHits.WithLabelValues(ports.CacheTierMemory))
		persistedBefore := testutil.ToFloat64(metrics.collector.CacheHits.WithLabelValues(ports.CacheTierPersisted))

		metrics.RecordHit(ports.CacheTierMemory)
		metrics.RecordHit(ports.CacheTierPersisted)
		metrics.RecordMiss()

		stats := metrics.GetStats()
		assert.Equal(t, int64(2), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.Equal(t, int64(3), stats.TotalOps)
		assert.Equal(t, float64(2)/float64(3), stats.HitRatio)
		assert.False(t, stats.LastUpdated.IsZero())

		assert.Equal(t, memoryBefore+1, testutil.ToFloat64(metrics.collector.CacheHits.WithLabelValues(ports.CacheTierMemory)))
		assert.Equal(t, persistedBefore+1, testutil.ToFloat64(metrics.collector.CacheHits.WithLabelValues(ports.CacheTierPersisted)))
	})

	t.Run("Evictions and persist failures", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.collector.CachePersistFailures.WithLabelValues("set"))

		metrics.RecordEviction()
		metrics.RecordPersistFailure("set")

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.Evictions)
		assert.Equal(t, int64(1), stats.PersistFailures)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.collector.CachePersistFailures.WithLabelValues("set")))
	})
}

func TestCacheMetricsAdapter_HitRatio(t *testing.T) {
	metrics := NewCacheMetricsAdapter()

	for i := 0; i < 7; i++ {
		metrics.RecordHit(ports.CacheTierMemory)
	}
	for i := 0; i < 3; i++ {
		metrics.RecordMiss()
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(10), stats.TotalOps)
	assert.Equal(t, 0.7, stats.HitRatio)
	assert.Equal(t, 0.7, testutil.ToFloat64(metrics.collector.CacheHitRatio))
}

func TestCatalogMetricsAdapter(t *testing.T) {
	metrics := NewCatalogMetricsAdapter()
	ok := metrics.collector.CatalogFetches.WithLabelValues("tcgdex", "get_set", "success")
	failed := metrics.collector.CatalogFetches.WithLabelValues("tcgdex", "get_set", "failure")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	metrics.RecordFetch("tcgdex", "get_set", true, 120*time.Millisecond)
	metrics.RecordFetch("tcgdex", "get_set", false, 2*time.Second)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestOwnershipMetricsAdapter(t *testing.T) {
	metrics := NewOwnershipMetricsAdapter()
	records := metrics.collector.OwnershipRecords.WithLabelValues("bulk_set")
	recordsBefore := testutil.ToFloat64(records)

	metrics.RecordWrite("bulk_set", 25, true)
	metrics.RecordWrite("bulk_set", 25, false)
	assert.Equal(t, recordsBefore+25, testutil.ToFloat64(records), "failed writes touch no records")

	gaugeBefore := testutil.ToFloat64(metrics.collector.OwnershipSubscriptions)
	metrics.SubscriptionOpened()
	metrics.SubscriptionOpened()
	metrics.SubscriptionClosed()

	assert.Equal(t, int64(1), metrics.ActiveSubscriptions())
	assert.Equal(t, gaugeBefore+1, testutil.ToFloat64(metrics.collector.OwnershipSubscriptions))
}
