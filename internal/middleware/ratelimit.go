package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter caps requests per client over a fixed window. Keys are the
// authenticated user ID when present, otherwise the client IP, so one noisy
// dashboard tab cannot starve the rest of a shared NAT.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
	go rl.evictLoop()
	return rl
}

// Allow records a hit for key and reports whether it is within the limit.
// The second result is the time remaining in the current window, used for
// the Retry-After header on rejection.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.windows[key] = &window{start: now, count: 1}
		return true, 0
	}
	w.count++
	if w.count > rl.limit {
		return false, rl.period - now.Sub(w.start)
	}
	return true, 0
}

func (rl *RateLimiter) evictLoop() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		cutoff := time.Now().Add(-rl.period)
		rl.mu.Lock()
		for k, w := range rl.windows {
			if w.start.Before(cutoff) {
				delete(rl.windows, k)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests over the limit with 429 and a Retry-After hint.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if uid := GetUserID(c); uid != 0 {
			key = "u:" + strconv.FormatUint(uint64(uid), 10)
		}
		ok, retry := rl.Allow(key)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
