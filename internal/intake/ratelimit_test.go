package intake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRateLimiter_SixthCallWithinWindowDenied(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(5, time.Hour, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		require.True(t, rl.Allow("1.2.3.4"), "call %d should be allowed", i+1)
		clock.Advance(time.Minute)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "6th call within the hour must be denied")

	// 61 minutes after the first counted call it has left the window.
	clock.Advance(61*time.Minute - 5*time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiter_DeniedCallsAreNotRecorded(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(2, time.Hour, WithClock(clock.Now))

	require.True(t, rl.Allow("k"))
	require.True(t, rl.Allow("k"))
	for i := 0; i < 10; i++ {
		clock.Advance(time.Minute)
		require.False(t, rl.Allow("k"))
	}

	// Only the two admitted calls count, so the key frees up one hour after
	// them regardless of the denied retries.
	clock.Advance(time.Hour - 10*time.Minute + time.Second)
	assert.True(t, rl.Allow("k"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_TakeRetryAfter(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(1, time.Hour, WithClock(clock.Now))

	ok, _ := rl.Take("k")
	require.True(t, ok)
	clock.Advance(20 * time.Minute)
	ok, wait := rl.Take("k")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Minute, wait)
}

func TestRateLimiter_EvictRemovesStaleKeys(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(5, time.Hour, WithClock(clock.Now))

	rl.Allow("old")
	clock.Advance(30 * time.Minute)
	rl.Allow("recent")
	require.Equal(t, 2, rl.Len())

	clock.Advance(31 * time.Minute)
	rl.Evict()
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_ConcurrentAllowNeverExceedsQuota(t *testing.T) {
	rl := NewRateLimiter(5, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("1.2.3.4") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, allowed)
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(5, time.Millisecond)
	rl.Allow("k")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
