// Package ratelimit implements per-user sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

type Config struct {
	MaxRequests int
	Window      time.Duration
}

func New(cfg Config) *Limiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return &Limiter{
		requests:    make(map[string][]time.Time),
		maxRequests: cfg.MaxRequests,
		window:      cfg.Window,
		now:         time.Now,
	}
}

// Allow reports whether userID may make another request. Timestamps
// older than the window are pruned first; a denied request is not
// recorded. Prune, check and append happen under one lock so concurrent
// callers cannot both slip past the limit.
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.requests[userID][:0]
	for _, ts := range l.requests[userID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.maxRequests {
		l.requests[userID] = kept
		return false
	}

	l.requests[userID] = append(kept, now)
	return true
}

// Active reports how many users currently have recorded requests.
// Stale entries linger until that user's next Allow call.
func (l *Limiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}
