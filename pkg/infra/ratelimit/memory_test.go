package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestMemoryLimiter_QuotaAndRetryAfter(t *testing.T) {
	clock := newClock()
	limiter := NewMemoryLimiter(20, time.Hour, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		decision, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, decision.Allowed, "request %d", i+1)
		assert.Equal(t, 20-(i+1), decision.Remaining)
		clock.Advance(time.Second)
	}

	decision, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, time.Hour-20*time.Second, decision.RetryAfter)

	other, err := limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	clock := newClock()
	limiter := NewMemoryLimiter(2, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	d, _ := limiter.Allow(ctx, "c") //nolint:errcheck
	assert.True(t, d.Allowed)
	clock.Advance(30 * time.Second)
	d, _ = limiter.Allow(ctx, "c") //nolint:errcheck
	assert.True(t, d.Allowed)
	d, _ = limiter.Allow(ctx, "c") //nolint:errcheck
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	clock.Advance(30 * time.Second)
	d, _ = limiter.Allow(ctx, "c") //nolint:errcheck
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestMemoryLimiter_RejectedRequestsAreNotRecorded(t *testing.T) {
	clock := newClock()
	limiter := NewMemoryLimiter(1, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "c") //nolint:errcheck
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		d, _ := limiter.Allow(ctx, "c") //nolint:errcheck
		assert.False(t, d.Allowed)
	}
	clock.Advance(10 * time.Second)
	d, _ := limiter.Allow(ctx, "c") //nolint:errcheck
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_ConcurrentClientNeverExceedsQuota(t *testing.T) {
	limiter := NewMemoryLimiter(20, time.Hour)
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Allow(context.Background(), "burst")
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(20), allowed.Load())
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	clock := newClock()
	limiter := NewMemoryLimiter(5, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "old") //nolint:errcheck
	clock.Advance(45 * time.Second)
	_, _ = limiter.Allow(ctx, "fresh") //nolint:errcheck
	clock.Advance(20 * time.Second)

	assert.Equal(t, 1, limiter.Sweep())
	assert.Equal(t, 1, limiter.Clients())
}
