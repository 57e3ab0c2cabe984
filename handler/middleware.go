package handler

import (
	"time"

	"github.com/Aashish23092/statement-extraction/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id that tags every log line of one request.
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a logger tagged with the request id, method and path
// to the request context and logs each completed request.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		log := logger.WithFields(base, map[string]any{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		})
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

		start := time.Now()
		c.Next()

		log.Info().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request completed")
	}
}

func requestLog(c *gin.Context) zerolog.Logger {
	return logger.FromContext(c.Request.Context())
}
