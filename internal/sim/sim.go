// Package sim synthesizes plausible quote snapshots for demo sessions that
// run without a live credential.
package sim

import (
	"context"
	"math"
	"math/rand"
	"time"

	"niftyops/internal/instruments"
	"niftyops/internal/quote"
)

// DefaultLatency approximates the network round-trip of a live fetch.
const DefaultLatency = 300 * time.Millisecond

// Rand is the randomness source, injectable for deterministic tests.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// RealRand adapts math/rand to the Rand interface.
type RealRand struct{ *rand.Rand }

func NewRealRand() RealRand {
	return RealRand{rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Source emits one randomized record per requested symbol. This path never
// fails other than on context cancellation.
type Source struct {
	rand    Rand
	clock   quote.Clock
	latency time.Duration
}

func New(rnd Rand, clock quote.Clock, latency time.Duration) *Source {
	return &Source{rand: rnd, clock: clock, latency: latency}
}

func (s *Source) Name() string { return "Simulated" }

func (s *Source) Fetch(ctx context.Context, symbols []string) ([]quote.Stock, error) {
	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	now := s.clock.Now().UnixMilli()
	out := make([]quote.Stock, 0, len(symbols))
	for _, sym := range symbols {
		open := 100 + s.rand.Float64()*3000
		change := (s.rand.Float64() - 0.5) * 50 // up to ±25
		last := open + change
		out = append(out, quote.Stock{
			Symbol:     sym,
			Name:       instruments.NameFor(sym),
			LastPrice:  round2(last),
			Change:     round2(change),
			ChangePct:  round2(change / open * 100),
			Open:       round2(open),
			High:       round2(math.Max(open, last)),
			Low:        round2(math.Min(open, last)),
			Volume:     float64(s.rand.Intn(1_000_000)),
			ObservedAt: now,
		})
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
