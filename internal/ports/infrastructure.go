package ports

import "time"

// CatalogConfig represents catalog access configuration
type CatalogConfig struct {
	DefaultLanguage string
	CacheTTL        time.Duration
	MaxRandomCards  int
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Store         string
	Namespace     string
	Capacity      int
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

// AppConfig represents application configuration
type AppConfig struct {
	BaseURL string
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetCatalogConfig() CatalogConfig
	GetCacheConfig() CacheConfig
	GetAppConfig() AppConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
