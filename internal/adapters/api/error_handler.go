package api

import (
	"errors"
	"net/http"

	"log/slog"

	errorspkg "cardbinder.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// handleError handles different types of application errors
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	slog.Debug("Request failed",
		"request_id", c.GetString(contextRequestID),
		"path", c.FullPath(),
		"error", err)
	writeError(c, err)
}

func writeError(c *gin.Context, err error) {
	statusCode, message := errorStatus(err)
	c.JSON(statusCode, ErrorResponse{Error: message, RequestID: c.GetString(contextRequestID)})
}

func errorStatus(err error) (int, string) {
	var appErr *errorspkg.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	switch appErr.Type {
	case errorspkg.ValidationError:
		return http.StatusBadRequest, appErr.Message
	case errorspkg.NotFoundError:
		return http.StatusNotFound, appErr.Message
	case errorspkg.AlreadyExistsError:
		return http.StatusConflict, appErr.Message
	case errorspkg.PermissionError:
		return http.StatusForbidden, appErr.Message
	case errorspkg.ExternalAPIError:
		return http.StatusServiceUnavailable, "Card catalog unavailable"
	case errorspkg.DatabaseError, errorspkg.CacheError:
		return http.StatusInternalServerError, "Internal server error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// getMetrics handles GET /api/metrics requests
func (s *HTTPServerAdapter) getMetrics(c *gin.Context) {
	slog.Debug("Metrics endpoint called")

	metrics, err := s.metricsCollector.GetMetrics(c.Request.Context())
	if err != nil {
		slog.Error("Error getting metrics", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}
