package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/pkg/keygen"
	"github.com/pokemon-tcg/pkg/logger"
)

const (
	// ContextKeyRequestID is the key for the request ID in gin context
	ContextKeyRequestID = "request_id"

	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware tags every request with an ID, reusing the caller's if it sent one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = keygen.RequestID()
		}

		c.Set(ContextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLoggerMiddleware logs every request as METHOD URL | status | latency.
// Query strings are logged; bodies and cookies are not, so credentials stay out of the log.
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		requestID := c.GetString(ContextKeyRequestID)

		switch {
		case statusCode >= 500:
			logger.Error("%s %s | status=%d | latency=%v | rid=%s | %s",
				c.Request.Method, fullURL, statusCode, latency, requestID, c.Errors.String())
		case statusCode >= 400:
			logger.Warn("%s %s | status=%d | latency=%v | rid=%s",
				c.Request.Method, fullURL, statusCode, latency, requestID)
		default:
			logger.Info("%s %s | status=%d | latency=%v | rid=%s",
				c.Request.Method, fullURL, statusCode, latency, requestID)
		}
	}
}
