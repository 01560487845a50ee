package analytics

// MaxDrawdownPercent returns the largest peak-to-trough decline of the
// cumulative P&L, as a percentage (0-100) of the peak.
//
// Equity starts at 0, so this is relative to trading P&L rather than account
// equity and no drawdown is measured until cumulative P&L turns positive.
// Use MaxDrawdownPercentFrom when the starting balance is known.
func MaxDrawdownPercent(pnlSeries []float64) float64 {
	return MaxDrawdownPercentFrom(0, pnlSeries)
}

// MaxDrawdownPercentFrom is MaxDrawdownPercent with equity starting at
// startingEquity. pnlSeries must be in chronological order.
func MaxDrawdownPercentFrom(startingEquity float64, pnlSeries []float64) float64 {
	if len(pnlSeries) == 0 {
		return 0
	}

	equity := startingEquity
	peak := startingEquity
	maxDD := 0.0

	for _, pnl := range pnlSeries {
		equity += pnl
		if equity > peak {
			peak = equity
		}

		dd := 0.0
		if peak > 0 {
			dd = (peak - equity) / peak
		}
		if dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD * 100
}

// MaxDrawdownAmount returns the largest peak-to-trough decline in currency
func MaxDrawdownAmount(startingEquity float64, pnlSeries []float64) float64 {
	equity := startingEquity
	peak := startingEquity
	maxDD := 0.0

	for _, pnl := range pnlSeries {
		equity += pnl
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}
