package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bikefleet/internal/logger"
	"bikefleet/internal/ratelimit"
	"bikefleet/pkg/utils"
)

// GeneralRateLimiter applies a coarse per-IP limit across the whole API. The
// fine-grained device budget is DeviceRateLimit below.
type GeneralRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func NewGeneralRateLimiter(rps float64, burst int) *GeneralRateLimiter {
	return &GeneralRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *GeneralRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[ip]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists = rl.limiters[ip]
	if exists {
		return limiter
	}

	limiter = rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// GeneralRateLimitMiddleware enforces the per-IP limit. The limiter is built
// by the caller and injected so tests control its lifecycle.
func GeneralRateLimitMiddleware(limiter *GeneralRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.getLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded",
				zap.String("request_id", GetRequestID(c)),
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClientKeyFunc extracts the limiter client identity from a request.
type ClientKeyFunc func(c *gin.Context) string

// ClientByParam keys the bucket by a path parameter, typically the device id.
func ClientByParam(name string) ClientKeyFunc {
	return func(c *gin.Context) string {
		if v := c.Param(name); v != "" {
			return v
		}
		return c.ClientIP()
	}
}

// ClientByIP keys the bucket by the caller's IP.
func ClientByIP() ClientKeyFunc {
	return func(c *gin.Context) string {
		return c.ClientIP()
	}
}

// DeviceRateLimit guards a device-facing route with the token-bucket
// limiter. Denied requests get a 429 with a Retry-After hint derived from
// the bucket's refill rate.
func DeviceRateLimit(limiter *ratelimit.Limiter, route string, clientKey ClientKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := clientKey(c)
		admitted, retryAfter := limiter.Allow(route, client)
		if !admitted {
			logger.Warn("Device route rate limited",
				zap.String("request_id", GetRequestID(c)),
				zap.String("route", route),
				zap.String("client", client),
				zap.Float64("retry_after_s", retryAfter),
			)
			c.Header("Retry-After", fmt.Sprintf("%.2f", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":       false,
				"error":         "rate limited",
				"retry_after_s": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
