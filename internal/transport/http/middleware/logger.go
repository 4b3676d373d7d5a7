package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/infra/logger"
)

// AccessLog emits one structured line per request. Client IPs are
// partially masked before logging.
func AccessLog(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", logger.MaskIP(c.ClientIP())),
			zap.String("request_id", c.Writer.Header().Get(RequestIDHeader)),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			lg.Error("request completed", fields...)
		case c.Writer.Status() >= 400:
			lg.Warn("request completed", fields...)
		default:
			lg.Info("request completed", fields...)
		}
	}
}
