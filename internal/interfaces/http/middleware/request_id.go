package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	applogger "github.com/billing/backend/internal/infrastructure/logger"
)

// RequestIDHeader is the header carrying the request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestIDContextKey is the gin context key holding the request id
const RequestIDContextKey = "request_id"

// RequestID attaches a correlation id to every request. An incoming
// X-Request-ID header is honored so callers can propagate their own id;
// otherwise a new one is generated. The id is echoed on the response and
// stored in the request context so downstream logs carry it.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		ctx, _ := applogger.WithRequestID(c.Request.Context(), logger, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request id set by the RequestID middleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}
