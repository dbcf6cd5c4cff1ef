package middleware

import (
	"log/slog"
	"time"

	"go-minimalapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		logger.Log.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"ip", c.ClientIP(),
			"request_id", c.GetString("RequestID"),
			"latency", time.Since(start).String(),
		)
	}
}
