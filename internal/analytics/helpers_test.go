package analytics

import (
	"time"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func f64(v float64) *float64 {
	return &v
}

// closedTrade builds a closed trade entered one hour before exit
func closedTrade(pnl float64, exit string) contracts.Trade {
	exitTime := ts(exit)
	entry := exitTime.Add(-time.Hour)
	return contracts.Trade{
		Symbol:       "EURUSD",
		AssetClass:   "Forex",
		Status:       contracts.TradeStatusClosed,
		EntryTime:    &entry,
		ExitTime:     exitTime,
		ProfitOrLoss: f64(pnl),
	}
}

func withSymbol(t contracts.Trade, symbol string) contracts.Trade {
	t.Symbol = symbol
	return t
}

func withAsset(t contracts.Trade, asset string) contracts.Trade {
	t.AssetClass = asset
	return t
}

func withTags(t contracts.Trade, names ...string) contracts.Trade {
	t.Tags = nil
	for _, n := range names {
		t.Tags = append(t.Tags, contracts.Tag{Name: n})
	}
	return t
}

func withR(t contracts.Trade, r float64) contracts.Trade {
	t.RMultiple = f64(r)
	return t
}

func findLabel(summaries []contracts.DimensionalSummary, label string) (contracts.DimensionalSummary, bool) {
	for _, s := range summaries {
		if s.Label == label {
			return s, true
		}
	}
	return contracts.DimensionalSummary{}, false
}

func labels(summaries []contracts.DimensionalSummary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Label
	}
	return out
}
