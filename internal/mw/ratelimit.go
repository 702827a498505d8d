package mw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// CookieOrIP keys requests by the named cookie, falling back to the client
// IP for requests that do not carry it.
func CookieOrIP(name string) KeyFunc {
	return func(c *gin.Context) string {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return "cookie:" + v
		}
		return "ip:" + c.ClientIP()
	}
}

// KeyedRateLimiter stores a rate limiter per key. Limiters idle for longer
// than the expiry are dropped.
type KeyedRateLimiter struct {
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

// NewKeyedRateLimiter creates a new KeyedRateLimiter.
func NewKeyedRateLimiter(r rate.Limit, b int, idle time.Duration) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: cache.New(idle, idle),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the rate limiter for a key, creating it on first use.
func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	if v, found := k.limiters.Get(key); found {
		k.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(k.r, k.b)
	if err := k.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// Lost the race against another request for the same key.
		if v, found := k.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// RateLimiter is a middleware for keyed rate limiting.
func RateLimiter(limiter *KeyedRateLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
