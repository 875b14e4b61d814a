package breadth

import (
	"niftyops/internal/quote"
)

// Stats summarizes market breadth for one snapshot.
type Stats struct {
	Advancers    int     `json:"advancers"`
	Decliners    int     `json:"decliners"`
	Unchanged    int     `json:"unchanged"`
	AvgChangePct float64 `json:"avg_change_pct"`
	TotalVolume  float64 `json:"total_volume"`
	TopGainer    string  `json:"top_gainer"`
	TopLoser     string  `json:"top_loser"`
	ObservedAt   int64   `json:"observed_at"`
}

// Compute derives breadth stats from a snapshot. Empty input yields a zero
// Stats.
func Compute(stocks []quote.Stock) Stats {
	var st Stats
	if len(stocks) == 0 {
		return st
	}

	var sumPct float64
	bestPct, worstPct := stocks[0].ChangePct, stocks[0].ChangePct
	st.TopGainer, st.TopLoser = stocks[0].Symbol, stocks[0].Symbol
	for _, s := range stocks {
		switch {
		case s.Change > 0:
			st.Advancers++
		case s.Change < 0:
			st.Decliners++
		default:
			st.Unchanged++
		}
		sumPct += s.ChangePct
		st.TotalVolume += s.Volume
		if s.ChangePct > bestPct {
			bestPct, st.TopGainer = s.ChangePct, s.Symbol
		}
		if s.ChangePct < worstPct {
			worstPct, st.TopLoser = s.ChangePct, s.Symbol
		}
		if s.ObservedAt > st.ObservedAt {
			st.ObservedAt = s.ObservedAt
		}
	}
	st.AvgChangePct = sumPct / float64(len(stocks))
	return st
}
