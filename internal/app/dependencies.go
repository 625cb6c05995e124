package app

import (
	"fmt"
	"log/slog"
	"time"

	"cardbinder.app/internal/adapters/database"
	"cardbinder.app/internal/adapters/external"
	"cardbinder.app/internal/adapters/infrastructure"
	"cardbinder.app/internal/config"
	"cardbinder.app/internal/ports"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type DependencyContainer struct {
	config      *config.Config
	db          *gorm.DB
	redisClient *redis.Client
	fileLogger  *infrastructure.FileLoggerAdapter
	ports       *ports.ApplicationPorts

	ownershipMetrics *infrastructure.OwnershipMetricsAdapter
}

func NewDependencyContainer(cfg *config.Config) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config: cfg,
	}

	if err := container.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if err := container.initializePorts(); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

// NewDependencyContainerWithDatabase builds the ports over an already opened database
func NewDependencyContainerWithDatabase(cfg *config.Config, db *gorm.DB) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config: cfg,
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	container.db = db

	if err := container.initializePorts(); err != nil {
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializeDatabase() error {
	slog.Info("Initializing database connection...", "driver", c.config.Database.Driver.String())

	var dialector gorm.Dialector
	switch c.config.Database.Driver {
	case config.DatabaseDriverSQLite:
		dialector = sqlite.Open(c.config.Database.SQLitePath)
	default:
		dialector = postgres.Open(c.config.Database.GetDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	if c.config.Database.Driver == config.DatabaseDriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("access database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	slog.Info("Running database migrations...")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	c.db = db
	slog.Info("Database connection established successfully")
	return nil
}

func (c *DependencyContainer) redisConnection() (*redis.Client, error) {
	if c.redisClient != nil {
		return c.redisClient, nil
	}

	client, err := external.NewRedisClient(&c.config.Cache.Redis)
	if err != nil {
		return nil, err
	}
	c.redisClient = client
	return client, nil
}

func (c *DependencyContainer) initializePorts() error {
	slog.Info("Initializing ports...")

	logger := infrastructure.NewSlogLoggerAdapter(nil)

	// Catalog calls are logged to a dedicated file when enabled
	var catalogLogger ports.Logger = logger
	if c.config.Catalog.EnableLogging && c.config.Catalog.LogFilePath != "" {
		fileLogger, err := infrastructure.NewFileLoggerAdapter(c.config.Catalog.LogFilePath)
		if err != nil {
			slog.Warn("Failed to create file logger, falling back to slog", "error", err)
		} else {
			c.fileLogger = fileLogger
			catalogLogger = fileLogger
			slog.Info("Catalog file logging enabled", "path", c.config.Catalog.LogFilePath)
		}
	}

	providerManager := external.NewCatalogProviderManagerAdapter(external.ProviderManagerConfig{
		TCGdexBaseURL:     c.config.Catalog.TCGdexBaseURL,
		PokemonTCGBaseURL: c.config.Catalog.PokemonTCGBaseURL,
		PokemonTCGAPIKey:  c.config.Catalog.PokemonTCGAPIKey,
		ProviderOrder:     c.config.Catalog.ProviderOrder,
		RequestsPerSecond: c.config.Catalog.RequestsPerSecond,
		Timeout:           time.Duration(c.config.Catalog.TimeoutSeconds) * time.Second,
		EnableLogging:     c.config.Catalog.EnableLogging,
		Metrics:           infrastructure.NewCatalogMetricsAdapter(),
		Logger:            catalogLogger,
	})

	cacheStore, err := c.createCacheStore()
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	slog.Info("Cache store initialized",
		"type", c.config.Cache.Store.String(),
		"namespace", c.config.Cache.Namespace)

	notifier, err := c.createNotifier(logger)
	if err != nil {
		return fmt.Errorf("create change notifier: %w", err)
	}
	slog.Info("Ownership notifier initialized", "type", c.config.Ownership.Notifier.String())

	collectionRepo := database.NewCollectionRepositoryAdapter(c.db, notifier, logger)
	ownershipRepo := database.NewOwnershipRepositoryAdapter(c.db, notifier, logger)
	ownershipFeed, err := database.NewOwnershipFeedAdapter(ownershipRepo, notifier, logger)
	if err != nil {
		return fmt.Errorf("create ownership feed: %w", err)
	}

	c.ownershipMetrics = infrastructure.NewOwnershipMetricsAdapter()

	c.ports = &ports.ApplicationPorts{
		CatalogProvider: providerManager,

		CacheStore:   cacheStore,
		CacheMetrics: infrastructure.NewCacheMetricsAdapter(),

		CollectionRepository: collectionRepo,
		OwnershipRepository:  ownershipRepo,
		OwnershipFeed:        ownershipFeed,
		OwnershipMetrics:     c.ownershipMetrics,
		ChangeNotifier:       notifier,

		HealthCheckers: map[string]ports.HealthChecker{
			"database":    infrastructure.NewDatabaseHealthChecker(c.db),
			"cache_store": infrastructure.NewCacheStoreHealthChecker(cacheStore, c.config.Cache.Store.String()),
			"catalog":     infrastructure.NewCatalogHealthChecker(providerManager),
		},
		ConfigProvider: infrastructure.NewConfigProviderAdapter(c.config),
		Logger:         logger,
		Database:       c.db,
	}

	slog.Info("Ports initialized successfully")
	return nil
}

func (c *DependencyContainer) createCacheStore() (ports.KeyValueStore, error) {
	switch c.config.Cache.Store {
	case config.StoreTypeRedis:
		client, err := c.redisConnection()
		if err != nil {
			return nil, err
		}
		return external.NewRedisStoreAdapter(client)
	case config.StoreTypeDatabase:
		return database.NewCacheStoreAdapter(c.db), nil
	default:
		return external.NewMemoryStoreAdapter(c.config.Cache.QuotaBytes), nil
	}
}

func (c *DependencyContainer) createNotifier(logger ports.Logger) (ports.ChangeNotifier, error) {
	if c.config.Ownership.Notifier == config.NotifierTypeRedis {
		client, err := c.redisConnection()
		if err != nil {
			return nil, err
		}
		return external.NewRedisNotifierAdapter(client, logger)
	}
	return external.NewMemoryNotifierAdapter(), nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

// SubscriptionCounter reports the live ownership subscriptions opened through these ports
func (c *DependencyContainer) SubscriptionCounter() infrastructure.SubscriptionCounter {
	return c.ownershipMetrics
}

func (c *DependencyContainer) Database() *gorm.DB {
	return c.db
}

// Cleanup releases the database, Redis and log file handles
func (c *DependencyContainer) Cleanup() error {
	var firstErr error
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			firstErr = err
		}
	}
	if c.fileLogger != nil {
		if err := c.fileLogger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.db != nil {
		if db, err := c.db.DB(); err == nil {
			if err := db.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
