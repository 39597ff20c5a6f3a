package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one token bucket per key. Buckets idle for longer
// than the time frame are dropped by Cleanup.
type TokenBucketLimiter struct {
	sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	window  time.Duration
	enabled bool
	now     func() time.Time
}

func NewTokenBucketLimiter(cfg Config) *TokenBucketLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(cfg.RequestsPerTimeFrame) / cfg.TimeFrame.Seconds()),
		burst:   burst,
		window:  cfg.TimeFrame,
		enabled: cfg.Enabled,
		now:     time.Now,
	}
}

func (l *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	if !l.enabled {
		return true, 0
	}

	l.Lock()
	defer l.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup forgets keys that have not been seen for a full time frame.
func (l *TokenBucketLimiter) Cleanup() {
	l.Lock()
	defer l.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Run calls Cleanup every time frame until stop is closed.
func (l *TokenBucketLimiter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-stop:
			return
		}
	}
}
