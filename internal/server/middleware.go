package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxQueryLogLen is the maximum length for logged query strings before
// truncation.
const maxQueryLogLen = 200

// slowRequestThreshold is the duration above which non-streaming requests
// are logged at WARN level. Streaming requests legitimately run for the
// lifetime of the model response and are exempt.
const slowRequestThreshold = 500 * time.Millisecond

// RequestLogger returns middleware that logs all requests with timing and a
// per-request ID. Failed requests are logged at ERROR, slow ones at WARN.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			attrs = append(attrs, "query", truncate(query, maxQueryLogLen))
		}

		streaming := c.Writer.Header().Get("Content-Type") == "text/event-stream"
		switch {
		case status >= 500:
			logger.Error("request failed", attrs...)
		case status >= 400:
			logger.Warn("request rejected", attrs...)
		case duration > slowRequestThreshold && !streaming:
			logger.Warn("slow request", attrs...)
		default:
			logger.Debug("request completed", attrs...)
		}
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
