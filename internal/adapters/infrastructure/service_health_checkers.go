package infrastructure

import (
	"context"
	"time"

	"cardbinder.app/internal/ports"
)

const storePingTimeout = 2 * time.Second

// Pinger is implemented by persisted cache tiers that can verify their backend
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStoreHealthChecker implements persisted cache tier health checking
type CacheStoreHealthChecker struct {
	store   ports.KeyValueStore
	backend string
}

// NewCacheStoreHealthChecker creates a new cache store health checker
func NewCacheStoreHealthChecker(store ports.KeyValueStore, backend string) *CacheStoreHealthChecker {
	return &CacheStoreHealthChecker{store: store, backend: backend}
}

// Check pings the store when it supports it; stores without a backend are always healthy
func (c *CacheStoreHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cacheStore",
		Details: map[string]interface{}{
			"backend": c.backend,
		},
	}

	if c.store == nil {
		status.Status = "unhealthy"
		status.Error = "cache store is not configured"
		return status
	}

	pinger, ok := c.store.(Pinger)
	if !ok {
		status.Status = "healthy"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	start := time.Now()
	if err := pinger.Ping(pingCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}

	status.Status = "healthy"
	status.Details["latency_ms"] = time.Since(start).Milliseconds()
	return status
}

// CatalogHealthChecker reports the configured catalog provider chain
type CatalogHealthChecker struct {
	catalogProvider ports.CatalogProviderManager
}

// NewCatalogHealthChecker creates a new catalog health checker
func NewCatalogHealthChecker(catalogProvider ports.CatalogProviderManager) *CatalogHealthChecker {
	return &CatalogHealthChecker{catalogProvider: catalogProvider}
}

// Check does not call the providers; upstream rate limits are spent on real traffic only
func (c *CatalogHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "catalog",
		Details:   map[string]interface{}{},
	}

	if c.catalogProvider == nil {
		status.Status = "unhealthy"
		status.Error = "catalog provider is not available"
		return status
	}

	info := c.catalogProvider.GetProviderInfo()
	for k, v := range info {
		status.Details[k] = v
	}

	if total, ok := info["total_providers"].(int); ok && total == 0 {
		status.Status = "unhealthy"
		status.Error = "no catalog providers configured"
		return status
	}

	status.Status = "healthy"
	return status
}
