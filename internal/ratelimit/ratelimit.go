package ratelimit

import (
	"context"
	"sync"
	"time"

	"niftyops/internal/quote"
)

// MinInterval wraps a source and enforces a minimum time between fetches. It
// guards the provider against a misconfigured poll cadence: a caller ticking
// faster than Interval waits until the interval has elapsed since the last
// fetch, or returns early if the context is canceled.
type MinInterval struct {
	Source   quote.Source
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Name() string { return m.Source.Name() }

func (m *MinInterval) Fetch(ctx context.Context, symbols []string) ([]quote.Stock, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	stocks, err := m.Source.Fetch(ctx, symbols)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return stocks, err
}
