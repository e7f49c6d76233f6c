package ratelimit

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryLimiter keeps a sliding-window log of request times per client.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	logs   *xsync.MapOf[string, []time.Time]
	now    func() time.Time
}

type MemoryOption func(*MemoryLimiter)

func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewMemoryLimiter(limit int, window time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		limit:  limit,
		window: window,
		logs:   xsync.NewMapOf[string, []time.Time](),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow prunes, checks and records atomically for clientID.
func (l *MemoryLimiter) Allow(_ context.Context, clientID string) (Decision, error) {
	now := l.now()
	decision := Decision{Limit: l.limit}

	l.logs.Compute(clientID, func(log []time.Time, _ bool) ([]time.Time, bool) {
		kept := l.prune(log, now)
		if len(kept) >= l.limit {
			decision.RetryAfter = kept[0].Add(l.window).Sub(now)
			decision.Reset = kept[0].Add(l.window)
			return kept, false
		}
		kept = append(kept, now)
		decision.Allowed = true
		decision.Remaining = l.limit - len(kept)
		decision.Reset = kept[0].Add(l.window)
		return kept, false
	})

	return decision, nil
}

// prune returns the timestamps still inside the window, in a fresh slice.
func (l *MemoryLimiter) prune(log []time.Time, now time.Time) []time.Time {
	kept := make([]time.Time, 0, min(len(log)+1, l.limit))
	for _, ts := range log {
		if now.Sub(ts) < l.window {
			kept = append(kept, ts)
		}
	}
	return kept
}

// Sweep drops clients whose whole log has left the window.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()
	var idle []string
	l.logs.Range(func(clientID string, log []time.Time) bool {
		if len(log) == 0 || now.Sub(log[len(log)-1]) >= l.window {
			idle = append(idle, clientID)
		}
		return true
	})

	removed := 0
	for _, clientID := range idle {
		l.logs.Compute(clientID, func(log []time.Time, loaded bool) ([]time.Time, bool) {
			kept := l.prune(log, now)
			if len(kept) == 0 {
				if loaded {
					removed++
				}
				return nil, true
			}
			return kept, false
		})
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *MemoryLimiter) Clients() int {
	return l.logs.Size()
}
