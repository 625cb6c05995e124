package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cardbinder.app/internal/adapters/api"
	"cardbinder.app/internal/adapters/infrastructure"
	"cardbinder.app/internal/config"
	"cardbinder.app/internal/core/cache"
	"cardbinder.app/internal/core/catalog"
	"cardbinder.app/internal/core/collection"
	"cardbinder.app/internal/core/ownership"
	"cardbinder.app/internal/ports"
	"github.com/gin-gonic/gin"
)

const startupHealthTimeout = 5 * time.Second

type Application struct {
	config *config.Config

	// Core
	cache             *cache.Cache
	catalogUseCase    *catalog.UseCase
	collectionUseCase *collection.UseCase
	ownershipUseCase  *ownership.UseCase

	// Adapters
	httpServer    *http.Server
	router        *gin.Engine
	healthChecker *infrastructure.SystemHealthChecker

	// Infrastructure
	deps     *DependencyContainer
	ports    *ports.ApplicationPorts
	stopChan chan struct{}
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	slog.Info("Initializing application ports...")
	deps, err := NewDependencyContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, deps)
	if err != nil {
		_ = deps.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies creates an application over an existing dependency container
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer) (*Application, error) {
	app := &Application{
		config:   cfg,
		deps:     deps,
		ports:    deps.ApplicationPorts(),
		stopChan: make(chan struct{}),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")

	cacheConfig := a.ports.ConfigProvider.GetCacheConfig()
	c, err := cache.New(cache.Dependencies{
		Store:   a.ports.CacheStore,
		Logger:  a.ports.Logger,
		Metrics: a.ports.CacheMetrics,
	}, cache.Options{
		Namespace:     cacheConfig.Namespace,
		Capacity:      cacheConfig.Capacity,
		DefaultTTL:    cacheConfig.DefaultTTL,
		SweepInterval: cacheConfig.SweepInterval,
	})
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	a.cache = c

	catalogUseCase, err := catalog.NewUseCase(catalog.UseCaseDependencies{
		Provider: a.ports.CatalogProvider,
		Cache:    a.cache,
		Config:   a.ports.ConfigProvider,
		Logger:   a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create catalog use case: %w", err)
	}
	a.catalogUseCase = catalogUseCase

	ownershipUseCase, err := ownership.NewUseCase(ownership.UseCaseDependencies{
		Repository:  a.ports.OwnershipRepository,
		Feed:        a.ports.OwnershipFeed,
		Collections: a.ports.CollectionRepository,
		Metrics:     a.ports.OwnershipMetrics,
		Logger:      a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create ownership use case: %w", err)
	}
	a.ownershipUseCase = ownershipUseCase

	collectionUseCase, err := collection.NewUseCase(collection.UseCaseDependencies{
		Repository: a.ports.CollectionRepository,
		Sets:       a.catalogUseCase,
		Config:     a.ports.ConfigProvider,
		Logger:     a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create collection use case: %w", err)
	}
	a.collectionUseCase = collectionUseCase

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	if err := api.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	metricsCollector := infrastructure.NewMetricsCollectorAdapter(infrastructure.MetricsCollectorConfig{
		CacheMetrics:    a.ports.CacheMetrics,
		CatalogProvider: a.ports.CatalogProvider,
		Subscriptions:   a.deps.SubscriptionCounter(),
	})

	a.healthChecker = infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		Checkers:       a.ports.HealthCheckers,
		ConfigProvider: a.ports.ConfigProvider,
	})

	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		CatalogUseCase:      a.catalogUseCase,
		CollectionUseCase:   a.collectionUseCase,
		OwnershipUseCase:    a.ownershipUseCase,
		Cache:               a.cache,
		SystemHealthChecker: a.healthChecker,
		MetricsCollector:    metricsCollector,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}

	a.router = httpAdapter.GetRouter()

	// WriteTimeout stays unset: ownership streams are long-lived responses
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting application...")

	a.logStartupHealth(ctx)

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-a.stopChan:
			cancel()
		case <-sweepCtx.Done():
		}
	}()
	go a.cache.Run(sweepCtx)

	slog.Info("Starting HTTP server", "port", a.config.Server.Port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

func (a *Application) logStartupHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, startupHealthTimeout)
	defer cancel()

	results := a.healthChecker.CheckAll(ctx)
	if infrastructure.Healthy(results) {
		slog.Info("All components healthy", "components", len(results))
		return
	}
	for name, status := range results {
		if status.Status != "healthy" {
			slog.Warn("Component unhealthy at startup", "component", name, "error", status.Error)
		}
	}
}

func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	close(a.stopChan)

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.deps.Cleanup(); err != nil {
		slog.Warn("Error releasing resources", "error", err)
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.router
}

// GetCache returns the catalog cache
func (a *Application) GetCache() *cache.Cache {
	return a.cache
}
