// Package ratelimit implements per-key sliding-window admission control
// for the write path. State is in-memory and per-instance: restarts
// reset budgets and horizontally scaled deployments multiply the
// effective limit by the instance count.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	mu   sync.Mutex
	hits []time.Time
}

// Limiter admits up to limit requests per key within a sliding window.
// Check-and-append is atomic per key; unrelated keys do not contend.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket

	now func() time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it fits in the
// window. Timestamps strictly older than the window are dropped
// first; a hit exactly one window old still counts.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{}
		l.buckets[key] = b
	}
	l.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	idx := 0
	for idx < len(b.hits) && b.hits[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		b.hits = append(b.hits[:0], b.hits[idx:]...)
	}

	if len(b.hits) >= l.limit {
		return false
	}

	b.hits = append(b.hits, now)
	return true
}
