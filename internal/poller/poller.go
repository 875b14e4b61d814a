// Package poller drives timer-based fetch cycles against a quote source and
// reports each full snapshot or typed failure upward.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"niftyops/internal/quote"
)

const (
	// DefaultInterval matches the dashboard's 2 s refresh cadence.
	DefaultInterval = 2 * time.Second
	// DefaultFetchTimeout bounds one cycle across all relay attempts.
	DefaultFetchTimeout = 30 * time.Second
)

// Config wires one polling session.
type Config struct {
	Source       quote.Source
	Symbols      []string
	Interval     time.Duration
	FetchTimeout time.Duration

	// OnQuotes receives each completed snapshot; OnError each failed cycle.
	// A failed cycle never stops the timer, so transient outages self-heal
	// on a later tick.
	OnQuotes func([]quote.Stock)
	OnError  func(error)

	Logger *zap.Logger
}

// Session is a handle to one running polling loop. The handle is owned by
// the caller; independent sessions never share state.
type Session struct {
	cfg    Config
	cancel context.CancelFunc
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// Start launches the session's single loop goroutine and runs the first
// cycle immediately. Cycles run synchronously inside the loop, so a cycle
// outlasting the interval skips intervening ticks: at most one fetch is ever
// in flight per session.
func Start(cfg Config) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{cfg: cfg, cancel: cancel, stopCh: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	return s
}

// Stop tears the session down: it cancels any in-flight fetch and waits for
// the loop goroutine to exit. Safe to call more than once.
func (s *Session) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
		s.cancel()
	})
	s.wg.Wait()
}

func (s *Session) loop(ctx context.Context) {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Session) runCycle(ctx context.Context) {
	select {
	case <-s.stopCh:
		return
	default:
	}

	cycleCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	stocks, err := s.cfg.Source.Fetch(cycleCtx, s.cfg.Symbols)
	if err != nil {
		if ctx.Err() != nil {
			// Session stopped mid-fetch; not a cycle failure.
			return
		}
		s.cfg.Logger.Warn("poll cycle failed",
			zap.String("source", s.cfg.Source.Name()),
			zap.Error(err))
		if s.cfg.OnError != nil {
			s.cfg.OnError(err)
		}
		return
	}
	s.cfg.Logger.Debug("poll cycle completed",
		zap.String("source", s.cfg.Source.Name()),
		zap.Int("records", len(stocks)))
	if s.cfg.OnQuotes != nil {
		s.cfg.OnQuotes(stocks)
	}
}
