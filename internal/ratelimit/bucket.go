package ratelimit

import (
	"sync"
	"time"
)

// minRetryAfter is the smallest backoff hint handed to a denied caller.
const minRetryAfter = 0.05

// bucket is a single token bucket. Tokens refill lazily at consume time, so
// an idle bucket costs nothing and its state is exact at every read.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	last       time.Time
}

func newBucket(capacity int, refillRate float64, now time.Time) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		last:       now,
	}
}

// consume takes one token. On denial it returns how long the caller should
// wait before one token becomes available.
func (b *bucket) consume(now time.Time) (bool, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	wait := 1.0
	if b.refillRate > 0 {
		wait = (1 - b.tokens) / b.refillRate
	}
	return false, max(minRetryAfter, wait)
}

// Limiter keeps one token bucket per (route, client) pair. It is constructed
// explicitly and injected into the middleware that uses it; there is no
// package-level instance. Buckets are created on first use and retained for
// the process lifetime.
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	capacity   int
	refillRate float64
	now        func() time.Time
}

func NewLimiter(capacity int, refillRate float64) *Limiter {
	return &Limiter{
		buckets:    make(map[string]*bucket),
		capacity:   capacity,
		refillRate: refillRate,
		now:        time.Now,
	}
}

// Allow reports whether a request on route by client is admitted. When it is
// not, retryAfter carries the number of seconds after which a retry can
// succeed.
func (l *Limiter) Allow(route, client string) (admitted bool, retryAfter float64) {
	return l.getBucket(route + ":" + client).consume(l.now())
}

func (l *Limiter) getBucket(key string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[key]
	l.mu.RUnlock()

	if exists {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists = l.buckets[key]
	if exists {
		return b
	}

	b = newBucket(l.capacity, l.refillRate, l.now())
	l.buckets[key] = b
	return b
}
