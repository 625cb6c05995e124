package api

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"cardbinder.app/internal/ports"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// HealthResponse represents the aggregated health of the service
type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
}

// cacheStats handles GET /api/cache requests
func (s *HTTPServerAdapter) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats(c.Request.Context()))
}

// clearCache handles DELETE /api/cache requests
func (s *HTTPServerAdapter) clearCache(c *gin.Context) {
	s.cache.Clear(c.Request.Context())
	slog.Info("Cache cleared", "request_id", c.GetString(contextRequestID))
	c.JSON(http.StatusOK, SuccessResponse{Message: "Cache cleared"})
}

// CleanupResponse reports how many expired entries a sweep removed
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// cleanupCache handles POST /api/cache/cleanup requests
func (s *HTTPServerAdapter) cleanupCache(c *gin.Context) {
	removed := s.cache.Cleanup(c.Request.Context())
	c.JSON(http.StatusOK, CleanupResponse{Removed: removed})
}

// health handles GET /api/health requests
func (s *HTTPServerAdapter) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	components := s.healthChecker.CheckAll(ctx)

	response := HealthResponse{Status: "healthy", Components: components}
	statusCode := http.StatusOK
	for name, component := range components {
		if component.Status != "healthy" {
			slog.Warn("Component unhealthy", "component", name, "error", component.Error)
			response.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, response)
}
