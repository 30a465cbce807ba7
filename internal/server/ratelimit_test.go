package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanhedrin/sanhedrin/internal/config"
)

func testLimiter(perMin, perHr, burst int) (*rateLimiter, *time.Time) {
	l := newRateLimiter(config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: perMin,
		RequestsPerHr:  perHr,
		Burst:          burst,
	})
	now := time.Now()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestRateLimiterBurst(t *testing.T) {
	l, _ := testLimiter(60, 1000, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("client"), "request %d within burst", i)
	}
	assert.False(t, l.Allow("client"), "burst exhausted")
}

func TestRateLimiterRefill(t *testing.T) {
	l, now := testLimiter(60, 1000, 2)

	assert.True(t, l.Allow("client"))
	assert.True(t, l.Allow("client"))
	assert.False(t, l.Allow("client"))

	// 60/min refills one token per second.
	*now = now.Add(1100 * time.Millisecond)
	assert.True(t, l.Allow("client"))
	assert.False(t, l.Allow("client"))
}

func TestRateLimiterHourlyWindow(t *testing.T) {
	l, now := testLimiter(6000, 5, 100)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("client"), "request %d within hourly budget", i)
	}
	assert.False(t, l.Allow("client"), "hourly budget exhausted")

	*now = now.Add(61 * time.Minute)
	assert.True(t, l.Allow("client"), "window rolls over after an hour")
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	l, _ := testLimiter(60, 1000, 1)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "a separate client has its own bucket")
}
