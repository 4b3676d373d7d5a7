package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/infra/config"
	"github.com/udaykiran8062/schoolManagement/internal/infra/logger"
)

// RateLimit enforces a sliding-window per-IP request cap backed by the
// attempt store. Store failures fail open: availability over strictness
// for a coarse request limiter.
func RateLimit(store port.RateLimitStore, cfg config.RateLimitSettings, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		if err := store.TrimWindow(c.Request.Context(), ip, cfg.WindowDuration, now); err != nil {
			lg.Warn("rate limit trim failed", zap.Error(err), zap.String("ip", logger.MaskIP(ip)))
			c.Next()
			return
		}

		count, err := store.CountAttempts(c.Request.Context(), ip, cfg.WindowDuration, now)
		if err != nil {
			lg.Warn("rate limit count failed", zap.Error(err), zap.String("ip", logger.MaskIP(ip)))
			c.Next()
			return
		}

		if count >= cfg.MaxRequests {
			retryAfter := cfg.WindowDuration
			if oldest, ok, err := store.OldestAttempt(c.Request.Context(), ip, cfg.WindowDuration, now); err == nil && ok {
				retryAfter = oldest.Add(cfg.WindowDuration).Sub(now)
				if retryAfter < time.Second {
					retryAfter = time.Second
				}
			}

			c.Header("Retry-After", retryAfter.Truncate(time.Second).String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "too many requests, please try again later",
			})
			return
		}

		if err := store.RecordAttempt(c.Request.Context(), ip, now); err != nil {
			lg.Warn("rate limit record failed", zap.Error(err), zap.String("ip", logger.MaskIP(ip)))
		}

		c.Next()
	}
}
