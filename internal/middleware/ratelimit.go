package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-caller rate limiting middleware using token buckets.
//
// Each API key (or client IP when no key is set) gets a bucket that fills at
// rps tokens/sec up to burst tokens. Every enrichment request fans out into
// several search and model calls, so the bucket protects the upstream
// quotas as much as the server. Rejections carry a Retry-After header.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		caller := "ip:" + c.ClientIP()
		if key, ok := c.Get(ContextKeyAPIKey); ok {
			if s, ok := key.(string); ok && s != "" {
				caller = "key:" + s
			}
		}

		mu.Lock()
		limiter, exists := limiters[caller]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[caller] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			if rps > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/rps))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
