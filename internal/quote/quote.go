package quote

import (
	"context"
	"time"
)

// Stock is the normalized snapshot row shared by all sources.
// One instance per instrument per poll cycle; a cycle replaces the whole
// collection rather than mutating rows in place.
type Stock struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	LastPrice  float64 `json:"last_price"`
	Change     float64 `json:"change"`
	ChangePct  float64 `json:"change_pct"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Volume     float64 `json:"volume"`
	ObservedAt int64   `json:"observed_at"` // unix millis, stamped at mapping time
}

// Source produces one full snapshot per call: either every requested symbol
// maps to a row, or the call fails with a single error. No partial batches.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) ([]Stock, error)
}

// Clock abstracts time.Now so tests can freeze timestamps.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
