package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserRateLimiter_DropsIdleUsers(t *testing.T) {
	limiter := NewUserRateLimiter(1, 1)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	limiter.now = func() time.Time { return clock }

	assert.Equal(t, minIdleTTL, limiter.idleTTL)

	assert.True(t, limiter.Allow("user:1"))
	assert.True(t, limiter.Allow("user:2"))

	clock = start.Add(minIdleTTL / 2)
	assert.True(t, limiter.Allow("user:2"))
	assert.Len(t, limiter.limiters, 2)

	clock = start.Add(minIdleTTL + time.Second)
	assert.True(t, limiter.Allow("user:3"))

	assert.Len(t, limiter.limiters, 2)
	assert.NotContains(t, limiter.limiters, "user:1")
	assert.Contains(t, limiter.limiters, "user:2")
	assert.Contains(t, limiter.limiters, "user:3")
}

func TestUserRateLimiter_IdleTTLCoversRefill(t *testing.T) {
	limiter := NewUserRateLimiter(1, 30)

	assert.Equal(t, 30*time.Minute, limiter.idleTTL)
}
