package middleware

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryakubu/auto-categorize-app/internal/logger"
)

const requestIDKey = "requestID"

// RequestID assigns every request an X-Request-ID, keeping one supplied by
// the caller.
func RequestID() gin.HandlerFunc {
	return requestid.New(requestid.WithGenerator(func() string {
		return uuid.NewString()
	}))
}

// RequestLogging returns a Gin middleware that logs each request with its
// request ID, method, path, status code, latency, and client IP using Zap.
// It must run after RequestID.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := requestid.Get(c)
		c.Set(requestIDKey, requestID)

		c.Next()

		logger.WithRequest(requestID).Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequestLogger returns the global logger tagged with the request's ID, if any.
func RequestLogger(c *gin.Context) *zap.SugaredLogger {
	if id := c.GetString(requestIDKey); id != "" {
		return logger.WithRequest(id)
	}
	return logger.Get()
}
