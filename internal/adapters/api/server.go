// Package api provides HTTP adapters for the hexagonal architecture
// These adapters handle incoming HTTP requests and translate them to use cases
package api

import (
	"context"
	"fmt"

	"cardbinder.app/internal/core/cache"
	"cardbinder.app/internal/core/catalog"
	"cardbinder.app/internal/core/collection"
	"cardbinder.app/internal/core/ownership"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router            *gin.Engine
	catalogUseCase    CatalogUseCase
	collectionUseCase CollectionUseCase
	ownershipUseCase  OwnershipUseCase
	cache             CacheAdmin
	healthChecker     ports.SystemHealthChecker
	metricsCollector  MetricsCollector
}

// Use case interfaces that the HTTP adapter depends on
type CatalogUseCase interface {
	ListSets(ctx context.Context, lang string) ([]catalog.Set, error)
	GetSet(ctx context.Context, lang, setID string) (*catalog.Set, error)
	SearchCards(ctx context.Context, lang string, params catalog.SearchParams) ([]catalog.Card, error)
	RandomCards(ctx context.Context, lang string, count int) ([]catalog.Card, error)
}

type CollectionUseCase interface {
	Create(ctx context.Context, params collection.CreateParams) (*collection.Collection, error)
	Get(ctx context.Context, userID, collectionID string) (*collection.Collection, error)
	ListForUser(ctx context.Context, userID string) ([]*collection.Collection, error)
	AddMember(ctx context.Context, actorID, collectionID, userID string, role collection.Role) error
	RemoveMember(ctx context.Context, actorID, collectionID, userID string) error
	Delete(ctx context.Context, actorID, collectionID string) error
}

type OwnershipUseCase interface {
	Subscribe(ctx context.Context, userID, collectionID string) (*ownership.Subscription, error)
	Progress(ctx context.Context, userID, collectionID string) (ownership.OwnedSet, ownership.Stats, error)
	SetOwnership(ctx context.Context, params ownership.SetOwnershipParams) error
	BulkSetOwnership(ctx context.Context, params ownership.BulkSetOwnershipParams) error
}

// CacheAdmin exposes cache introspection and flushing
type CacheAdmin interface {
	Stats(ctx context.Context) cache.Stats
	Clear(ctx context.Context)
	Cleanup(ctx context.Context) int
}

type MetricsCollector interface {
	GetMetrics(ctx context.Context) (map[string]interface{}, error)
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	CatalogUseCase      CatalogUseCase
	CollectionUseCase   CollectionUseCase
	OwnershipUseCase    OwnershipUseCase
	Cache               CacheAdmin
	SystemHealthChecker ports.SystemHealthChecker
	MetricsCollector    MetricsCollector
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())

	server := &HTTPServerAdapter{
		router:            router,
		catalogUseCase:    opts.CatalogUseCase,
		collectionUseCase: opts.CollectionUseCase,
		ownershipUseCase:  opts.OwnershipUseCase,
		cache:             opts.Cache,
		healthChecker:     opts.SystemHealthChecker,
		metricsCollector:  opts.MetricsCollector,
	}

	server.setupRoutes()
	return server, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.CatalogUseCase == nil {
		return errors.NewValidationError("catalog use case is required")
	}
	if opts.CollectionUseCase == nil {
		return errors.NewValidationError("collection use case is required")
	}
	if opts.OwnershipUseCase == nil {
		return errors.NewValidationError("ownership use case is required")
	}
	if opts.Cache == nil {
		return errors.NewValidationError("cache is required")
	}
	if opts.SystemHealthChecker == nil {
		return errors.NewValidationError("system health checker is required")
	}
	if opts.MetricsCollector == nil {
		return errors.NewValidationError("metrics collector is required")
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/sets", s.listSets)
		api.GET("/sets/:setID", s.getSet)
		api.GET("/cards", s.searchCards)
		api.GET("/cards/random", s.randomCards)

		api.GET("/cache", s.cacheStats)
		api.DELETE("/cache", s.clearCache)
		api.POST("/cache/cleanup", s.cleanupCache)
		api.GET("/health", s.health)
		api.GET("/metrics", s.getMetrics)
	}

	collections := api.Group("/collections", requireUser())
	{
		collections.POST("", s.createCollection)
		collections.GET("", s.listCollections)
		collections.GET("/:id", s.getCollection)
		collections.DELETE("/:id", s.deleteCollection)
		collections.POST("/:id/members", s.addMember)
		collections.DELETE("/:id/members/:userID", s.removeMember)

		collections.GET("/:id/ownership", s.getOwnership)
		collections.GET("/:id/ownership/stream", s.streamOwnership)
		collections.POST("/:id/ownership/bulk", s.bulkSetOwnership)
		collections.PUT("/:id/cards/:cardID/ownership", s.setOwnership)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}
