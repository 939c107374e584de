package intake

import (
	"context"
	"sync"
	"time"
)

// RateLimiter admits at most quota calls per key within a trailing window.
// Denied calls are not recorded, so a client that keeps retrying is admitted
// again as soon as its oldest counted call leaves the window.
//
// State is process-local and starts empty on restart.
type RateLimiter struct {
	quota  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	timestamps []time.Time
}

// Option customizes a RateLimiter.
type Option func(*RateLimiter)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		if now != nil {
			rl.now = now
		}
	}
}

// NewRateLimiter creates a limiter admitting quota calls per window per key.
func NewRateLimiter(quota int, window time.Duration, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		quota:   quota,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow reports whether a call for key is admitted, recording it if so.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.Take(key)
	return ok
}

// Take is Allow that also returns, on denial, how long until the oldest
// counted call leaves the window.
func (rl *RateLimiter) Take(key string) (bool, time.Duration) {
	now := rl.now()
	windowStart := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[key]
	if !ok {
		cw = &clientWindow{}
		rl.clients[key] = cw
	}
	cw.prune(windowStart)

	if len(cw.timestamps) >= rl.quota {
		return false, cw.timestamps[0].Add(rl.window).Sub(now)
	}
	cw.timestamps = append(cw.timestamps, now)
	return true, 0
}

// prune drops timestamps at or before windowStart. In-place filter on the
// shared backing array.
func (cw *clientWindow) prune(windowStart time.Time) {
	valid := cw.timestamps[:0]
	for _, ts := range cw.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	cw.timestamps = valid
}

// Evict removes keys whose timestamps have all left the window.
func (rl *RateLimiter) Evict() {
	windowStart := rl.now().Add(-rl.window)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cw := range rl.clients {
		cw.prune(windowStart)
		if len(cw.timestamps) == 0 {
			delete(rl.clients, key)
		}
	}
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Run evicts stale keys every interval until ctx is cancelled. A
// non-positive interval falls back to the window length.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = rl.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Evict()
		}
	}
}
