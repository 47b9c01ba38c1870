package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/brightwell-labs/fetchcore/config"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// anonymousShare is the fraction of the configured rate and burst given to
// client-IP identities (no API key presented). Fetching arbitrary remote
// URLs makes unauthenticated callers the likelier source of SSRF probing and
// scraping abuse, so they share a smaller slice of capacity than a known key.
const anonymousShare = 0.5

// RateLimit returns per-identity token-bucket rate limiting middleware
// powered by golang.org/x/time/rate. Identity is the authenticated API key
// when present (set by Auth), otherwise the client IP; IP-keyed buckets run
// at anonymousShare of the configured rate, since an API key is the only
// identity a caller can't launder by rotating source addresses.
//
// Entries unused for an hour are evicted by a background goroutine that runs
// every 5 minutes, preventing unbounded memory growth.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*limiterEntry)

	getLimiter := func(identity string, authenticated bool) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		entry, ok := limiters[identity]
		if !ok {
			rps, burst := cfg.RequestsPerSecond, cfg.Burst
			if !authenticated {
				rps *= anonymousShare
				burst = maxInt(1, int(float64(burst)*anonymousShare))
			}
			entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			limiters[identity] = entry
		}
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-time.Hour)
			mu.Lock()
			for id, entry := range limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(limiters, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		identity, authenticated := c.Get("api_key")
		if !authenticated {
			identity = c.ClientIP()
		}

		limiter := getLimiter(identity.(string), authenticated)
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded, please slow down",
			})
			return
		}
		c.Next()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
