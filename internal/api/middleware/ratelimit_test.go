package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowWithinBudget(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("10.0.0.1")
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, retryAfter := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.GreaterOrEqual(t, retryAfter, 1)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	allowed, _ := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.2")
	assert.True(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiterWithClock(2, time.Minute, func() time.Time { return now })

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")
	allowed, _ := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, _ = limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
}

func TestRateLimiter_EmptyKeyBucketsAsAnonymous(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	allowed, _ := limiter.Allow("")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("   ")
	assert.False(t, allowed)
}

func TestRateLimiter_PrunesExpiredEntries(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiterWithClock(5, time.Minute, func() time.Time { return now })

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")
	assert.Len(t, limiter.store, 2)

	now = now.Add(2 * time.Minute)
	limiter.Allow("10.0.0.3")
	assert.Len(t, limiter.store, 1)
}
