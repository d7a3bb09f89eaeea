// Package ratelimit implements a per-identity sliding-window rate limiter
// for chat and guest endpoints. The process-wide request limiter lives in the
// HTTP middleware and uses golang.org/x/time/rate instead.
package ratelimit

import (
	"sync"
	"time"
)

// Window admits at most limit events per identity within a rolling period.
// Timestamps older than the period are evicted on each check.
type Window struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	seen   map[string][]time.Time

	// now is swappable in tests.
	now func() time.Time
}

// NewWindow creates a limiter admitting limit events per period per identity.
func NewWindow(limit int, period time.Duration) *Window {
	return &Window{
		limit:  limit,
		period: period,
		seen:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether the identity may proceed now, recording the event
// when admitted. A rejected call records nothing.
func (w *Window) Allow(identity string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.period)

	stamps := w.seen[identity]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= w.limit {
		w.seen[identity] = kept
		return false
	}

	w.seen[identity] = append(kept, now)
	return true
}

// Remaining returns how many events the identity could still send now.
func (w *Window) Remaining(identity string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-w.period)
	active := 0
	for _, ts := range w.seen[identity] {
		if ts.After(cutoff) {
			active++
		}
	}

	if active >= w.limit {
		return 0
	}
	return w.limit - active
}

// Reset clears all recorded events for the identity.
func (w *Window) Reset(identity string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.seen, identity)
}
