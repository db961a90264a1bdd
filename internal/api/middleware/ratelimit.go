package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter enforces a fixed-window request budget per key
type RateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu    sync.Mutex
	store map[string]rateEntry
}

type rateEntry struct {
	count int
	reset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return newRateLimiterWithClock(limit, window, time.Now)
}

func newRateLimiterWithClock(limit int, window time.Duration, clock func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		clock:  clock,
		store:  make(map[string]rateEntry),
	}
}

// Allow records a request for key and reports whether it fits the budget
func (l *RateLimiter) Allow(key string) (bool, int) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.store[key]
	if !ok || now.After(entry.reset) {
		l.store[key] = rateEntry{count: 1, reset: now.Add(l.window)}
		l.pruneExpiredLocked(now)
		return true, 0
	}

	if entry.count >= l.limit {
		retry := int(entry.reset.Sub(now).Seconds()) + 1
		return false, retry
	}
	entry.count++
	l.store[key] = entry
	return true, 0
}

func (l *RateLimiter) pruneExpiredLocked(now time.Time) {
	if len(l.store) == 0 {
		return
	}
	for key, entry := range l.store {
		if now.After(entry.reset) {
			delete(l.store, key)
		}
	}
}

// RateLimit returns a gin middleware enforcing requestsPerMinute per client
// IP with a one-minute rolling window. Exceeding the budget yields 429 with
// the uniform error envelope.
func RateLimit(requestsPerMinute int) gin.HandlerFunc {
	limiter := NewRateLimiter(requestsPerMinute, time.Minute)
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Allow(c.ClientIP())
		if !allowed {
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
