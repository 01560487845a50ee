package analytics

import (
	"fmt"
	"time"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

// DashboardOptions controls BuildDashboard
type DashboardOptions struct {
	Options
	HistogramBuckets int
	HistogramWidth   float64
	// Now stamps GeneratedAt; zero leaves it empty so results stay reproducible
	Now time.Time
}

// DefaultDashboardOptions returns options with the standard histogram
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{HistogramBuckets: DefaultHistogramBuckets}
}

// BuildDashboard computes the summary and every breakdown for trades.
// Each dimension re-scans the trades; partitions never share accumulators.
func BuildDashboard(trades []contracts.Trade, opts DashboardOptions) (*contracts.Dashboard, error) {
	distribution, err := BuildHistogram(trades, opts.HistogramBuckets, opts.HistogramWidth)
	if err != nil {
		return nil, fmt.Errorf("build histogram: %w", err)
	}

	return &contracts.Dashboard{
		Summary:      SummarizeWith(trades, opts.Options),
		ByDayOfWeek:  ByDayOfWeekWith(trades, opts.Options),
		ByAssetClass: ByAssetClassWith(trades, opts.Options),
		BySymbol:     BySymbolWith(trades, opts.Options),
		ByDuration:   ByDurationWith(trades, opts.Options),
		ByTag:        ByTagWith(trades, opts.Options),
		Distribution: distribution,
		EquityCurve:  EquityCurve(trades, opts.StartingEquity),
		Daily:        DailyPnL(trades),
		Monthly:      MonthlyPnL(trades),
		GeneratedAt:  opts.Now,
	}, nil
}
