package infrastructure

import (
	"time"

	"cardbinder.app/internal/config"
	"cardbinder.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

// NewConfigProviderAdapter creates a new config provider adapter
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

// GetAppConfig returns application configuration
func (c *ConfigProviderAdapter) GetAppConfig() ports.AppConfig {
	return ports.AppConfig{
		BaseURL: c.config.AppBaseURL,
	}
}

// GetCatalogConfig returns catalog access configuration
func (c *ConfigProviderAdapter) GetCatalogConfig() ports.CatalogConfig {
	return ports.CatalogConfig{
		DefaultLanguage: c.config.Catalog.DefaultLanguage,
		CacheTTL:        time.Duration(c.config.Cache.TTLSeconds) * time.Second,
		MaxRandomCards:  c.config.Catalog.MaxRandomCards,
	}
}

// GetCacheConfig returns cache configuration
func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Store:         c.config.Cache.Store.String(),
		Namespace:     c.config.Cache.Namespace,
		Capacity:      c.config.Cache.Capacity,
		DefaultTTL:    time.Duration(c.config.Cache.TTLSeconds) * time.Second,
		SweepInterval: time.Duration(c.config.Cache.SweepIntervalMinutes) * time.Minute,
	}
}
