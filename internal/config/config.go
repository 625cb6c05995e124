package config

import (
	"fmt"
	"strings"

	"cardbinder.app/pkg/errors"
	"cardbinder.app/pkg/validation"
	"github.com/kelseyhightower/envconfig"
)

const (
	maxRedisDB          = 15
	maxPortNumber       = 65535
	maxCacheTTLSeconds  = 86400
	maxSweepMinutes     = 1440
	maxCacheCapacity    = 100000
	maxRequestsPerSec   = 1000
	maxRandomCardsLimit = 100
)

// Config represents the application configuration structure
type Config struct {
	Server     ServerConfig    `split_words:"true"`
	Log        LogConfig       `split_words:"true"`
	Database   DatabaseConfig  `split_words:"true"`
	Catalog    CatalogConfig   `split_words:"true"`
	Cache      CacheConfig     `split_words:"true"`
	Ownership  OwnershipConfig `split_words:"true"`
	AppBaseURL string          `envconfig:"APP_URL" default:"http://localhost:8080"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// DatabaseDriver selects the gorm dialector
type DatabaseDriver int

const (
	DatabaseDriverUnknown DatabaseDriver = iota
	DatabaseDriverPostgres
	DatabaseDriverSQLite
)

// String returns the string representation of the driver
func (d DatabaseDriver) String() string {
	switch d {
	case DatabaseDriverPostgres:
		return "postgres"
	case DatabaseDriverSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (d *DatabaseDriver) UnmarshalText(text []byte) error {
	switch string(text) {
	case "postgres":
		*d = DatabaseDriverPostgres
	case "sqlite":
		*d = DatabaseDriverSQLite
	default:
		*d = DatabaseDriverUnknown
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (d DatabaseDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type DatabaseConfig struct {
	Driver     DatabaseDriver `envconfig:"DB_DRIVER" default:"postgres"`
	Host       string         `envconfig:"DB_HOST" default:"localhost"`
	Port       int            `envconfig:"DB_PORT" default:"5432"`
	User       string         `envconfig:"DB_USER" default:"postgres"`
	Password   string         `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string         `envconfig:"DB_NAME" default:"cardbinder"`
	SSLMode    string         `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath string         `envconfig:"DB_SQLITE_PATH" default:"cardbinder.db"`
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type CatalogConfig struct {
	TCGdexBaseURL     string   `envconfig:"TCGDEX_BASE_URL" default:"https://api.tcgdex.net/v2"`
	PokemonTCGBaseURL string   `envconfig:"POKEMONTCG_BASE_URL" default:"https://api.pokemontcg.io/v2"`
	PokemonTCGAPIKey  string   `envconfig:"POKEMONTCG_API_KEY"`
	ProviderOrder     []string `envconfig:"CATALOG_PROVIDER_ORDER" default:"tcgdex,pokemontcg"`
	DefaultLanguage   string   `envconfig:"CATALOG_DEFAULT_LANGUAGE" default:"en"`
	RequestsPerSecond int      `envconfig:"CATALOG_REQUESTS_PER_SECOND" default:"10"`
	TimeoutSeconds    int      `envconfig:"CATALOG_TIMEOUT_SECONDS" default:"10"`
	MaxRandomCards    int      `envconfig:"CATALOG_MAX_RANDOM_CARDS" default:"20"`
	EnableLogging     bool     `envconfig:"CATALOG_ENABLE_LOGGING" default:"true"`
	LogFilePath       string   `envconfig:"CATALOG_LOG_FILE_PATH" default:"logs/catalog.log"`
}

// StoreType represents the persisted cache tier backend
type StoreType int

const (
	StoreTypeUnknown StoreType = iota
	StoreTypeMemory
	StoreTypeRedis
	StoreTypeDatabase
)

// String returns the string representation of store type
func (s StoreType) String() string {
	switch s {
	case StoreTypeMemory:
		return "memory"
	case StoreTypeRedis:
		return "redis"
	case StoreTypeDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// IsValid checks if the store type is valid
func (s StoreType) IsValid() bool {
	return s == StoreTypeMemory || s == StoreTypeRedis || s == StoreTypeDatabase
}

// StoreTypeFromString converts string to StoreType enum
func StoreTypeFromString(s string) StoreType {
	switch s {
	case "memory":
		return StoreTypeMemory
	case "redis":
		return StoreTypeRedis
	case "database":
		return StoreTypeDatabase
	default:
		return StoreTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (s *StoreType) UnmarshalText(text []byte) error {
	*s = StoreTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (s StoreType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type CacheConfig struct {
	Store                StoreType   `envconfig:"CACHE_STORE" default:"memory"`
	Namespace            string      `envconfig:"CACHE_NAMESPACE" default:"tcg_cache_"`
	Capacity             int         `envconfig:"CACHE_CAPACITY" default:"100"`
	TTLSeconds           int         `envconfig:"CACHE_TTL_SECONDS" default:"300"`
	SweepIntervalMinutes int         `envconfig:"CACHE_SWEEP_INTERVAL_MINUTES" default:"10"`
	QuotaBytes           int         `envconfig:"CACHE_QUOTA_BYTES" default:"5242880"`
	Redis                RedisConfig `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

// NotifierType selects how ownership change events travel
type NotifierType int

const (
	NotifierTypeUnknown NotifierType = iota
	NotifierTypeMemory
	NotifierTypeRedis
)

// String returns the string representation of notifier type
func (n NotifierType) String() string {
	switch n {
	case NotifierTypeMemory:
		return "memory"
	case NotifierTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (n *NotifierType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "memory":
		*n = NotifierTypeMemory
	case "redis":
		*n = NotifierTypeRedis
	default:
		*n = NotifierTypeUnknown
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (n NotifierType) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

type OwnershipConfig struct {
	Notifier NotifierType `envconfig:"OWNERSHIP_NOTIFIER" default:"memory"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Ownership.Validate(); err != nil {
		return err
	}
	if c.Cache.Store == StoreTypeRedis || c.Ownership.Notifier == NotifierTypeRedis {
		if err := c.Cache.Redis.Validate(); err != nil {
			return err
		}
	}
	return c.validateAppBaseURL()
}

func (c *Config) validateAppBaseURL() error {
	if c.AppBaseURL == "" {
		return errors.NewConfigurationError("APP_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(c.AppBaseURL, "http://") && !strings.HasPrefix(c.AppBaseURL, "https://") {
		return errors.NewConfigurationError("APP_URL must start with http:// or https://", nil)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case DatabaseDriverSQLite:
		if d.SQLitePath == "" {
			return errors.NewConfigurationError("DB_SQLITE_PATH cannot be empty when DB_DRIVER is sqlite", nil)
		}
		return nil
	case DatabaseDriverPostgres:
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: postgres, sqlite", nil)
	}

	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (c *CatalogConfig) Validate() error {
	if c.TCGdexBaseURL == "" && c.PokemonTCGBaseURL == "" {
		return errors.NewConfigurationError("at least one catalog base URL must be configured", nil)
	}
	for name, url := range map[string]string{
		"TCGDEX_BASE_URL":     c.TCGdexBaseURL,
		"POKEMONTCG_BASE_URL": c.PokemonTCGBaseURL,
	} {
		if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
		}
	}

	validProviders := map[string]bool{
		"tcgdex":     true,
		"pokemontcg": true,
	}
	for _, provider := range c.ProviderOrder {
		if !validProviders[provider] {
			return errors.NewConfigurationError(fmt.Sprintf("invalid catalog provider in order: %s", provider), nil)
		}
	}

	if !validation.IsSupportedLanguage(c.DefaultLanguage) {
		return errors.NewConfigurationError(
			fmt.Sprintf("CATALOG_DEFAULT_LANGUAGE %q is not supported", c.DefaultLanguage), nil)
	}
	if c.RequestsPerSecond < 1 || c.RequestsPerSecond > maxRequestsPerSec {
		return errors.NewConfigurationError("CATALOG_REQUESTS_PER_SECOND must be between 1 and 1000", nil)
	}
	if c.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("CATALOG_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	if c.MaxRandomCards < 1 || c.MaxRandomCards > maxRandomCardsLimit {
		return errors.NewConfigurationError("CATALOG_MAX_RANDOM_CARDS must be between 1 and 100", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Store.IsValid() {
		return errors.NewConfigurationError("CACHE_STORE must be one of: memory, redis, database", nil)
	}
	if c.Namespace == "" {
		return errors.NewConfigurationError("CACHE_NAMESPACE cannot be empty", nil)
	}
	if c.Capacity < 1 || c.Capacity > maxCacheCapacity {
		return errors.NewConfigurationError("CACHE_CAPACITY must be between 1 and 100000", nil)
	}
	if c.TTLSeconds < 1 || c.TTLSeconds > maxCacheTTLSeconds {
		return errors.NewConfigurationError("CACHE_TTL_SECONDS must be between 1 and 86400", nil)
	}
	if c.SweepIntervalMinutes < 1 || c.SweepIntervalMinutes > maxSweepMinutes {
		return errors.NewConfigurationError("CACHE_SWEEP_INTERVAL_MINUTES must be between 1 and 1440", nil)
	}
	if c.QuotaBytes < 0 {
		return errors.NewConfigurationError("CACHE_QUOTA_BYTES cannot be negative", nil)
	}
	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when Redis is used", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (o *OwnershipConfig) Validate() error {
	if o.Notifier != NotifierTypeMemory && o.Notifier != NotifierTypeRedis {
		return errors.NewConfigurationError("OWNERSHIP_NOTIFIER must be one of: memory, redis", nil)
	}
	return nil
}
