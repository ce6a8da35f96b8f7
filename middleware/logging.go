package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Server errors log at warn level.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"size", c.Writer.Size(),
			"remote", c.ClientIP(),
		}
		if uid := c.GetString(KeyUserID); uid != "" {
			fields = append(fields, "user_id", uid)
		}
		if status >= 500 {
			log.Warnw("http request", fields...)
			return
		}
		log.Debugw("http request", fields...)
	}
}
