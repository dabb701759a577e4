package command

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per source so a flooding session
// cannot monopolize the dispatcher.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows limit command lines per second with the given
// burst, counted per source name.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

// Allow reports whether the named source may submit another line now.
func (l *RateLimiter) Allow(source string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[source]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[source] = b
	}
	return b.Allow()
}
