package mocks

import "cardbinder.app/internal/ports"

// ConfigProvider returns fixed configuration sections
type ConfigProvider struct {
	Catalog ports.CatalogConfig
	Cache   ports.CacheConfig
	App     ports.AppConfig
}

func (c *ConfigProvider) GetCatalogConfig() ports.CatalogConfig { return c.Catalog }
func (c *ConfigProvider) GetCacheConfig() ports.CacheConfig     { return c.Cache }
func (c *ConfigProvider) GetAppConfig() ports.AppConfig         { return c.App }
