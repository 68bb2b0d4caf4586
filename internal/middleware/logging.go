package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"budgetledger/internal/logger"
	"budgetledger/internal/uuid"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// RequestLogging returns a Gin middleware that logs each request with a
// request ID, method, path, status code, latency and client IP. A
// well-formed incoming X-Request-ID is reused; otherwise a UUIDv7 is
// generated.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if !uuid.IsValid(requestID) {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		logger.Get().Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequestID returns the ID assigned by RequestLogging, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
