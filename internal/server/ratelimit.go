package server

import (
	"sync"
	"time"

	"github.com/sanhedrin/sanhedrin/internal/config"
)

// clientBucket tracks one client's token bucket and hourly window.
type clientBucket struct {
	tokens     float64
	lastRefill time.Time
	hourCount  int
	hourStart  time.Time
	lastSeen   time.Time
}

// rateLimiter enforces a per-client token bucket for short bursts plus a
// fixed hourly window. Clients are keyed by API key or remote IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket

	ratePerSec float64
	burst      float64
	perHour    int
	now        func() time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		clients:    make(map[string]*clientBucket),
		ratePerSec: float64(cfg.RequestsPerMin) / 60.0,
		burst:      float64(cfg.Burst),
		perHour:    cfg.RequestsPerHr,
		now:        time.Now,
	}
}

// Allow reports whether the client may make a request now and, if so,
// consumes one token.
func (l *rateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{tokens: l.burst, lastRefill: now, hourStart: now}
		l.clients[key] = b
	}
	b.lastSeen = now

	if len(l.clients) > 1 && len(l.clients)%1024 == 0 {
		l.evictStale(now)
	}

	// Refill the bucket.
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * l.ratePerSec
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastRefill = now

	// Roll the hourly window.
	if now.Sub(b.hourStart) >= time.Hour {
		b.hourCount = 0
		b.hourStart = now
	}

	if b.tokens < 1 || (l.perHour > 0 && b.hourCount >= l.perHour) {
		return false
	}
	b.tokens--
	b.hourCount++
	return true
}

// evictStale drops clients idle for more than an hour. Callers hold l.mu.
func (l *rateLimiter) evictStale(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.lastSeen) > time.Hour {
			delete(l.clients, key)
		}
	}
}
