package api

import (
	"log/slog"
	"strings"
	"time"

	"cardbinder.app/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"

	contextRequestID = "requestID"
	contextUserID    = "userID"
)

// requestID propagates the caller's request ID or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Debug("HTTP request",
			"request_id", c.GetString(contextRequestID),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// requireUser rejects requests without the identity header set by the upstream identity provider
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			writeError(c, errors.NewValidationError("X-User-ID header is required"))
			c.Abort()
			return
		}
		c.Set(contextUserID, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(contextUserID)
}
