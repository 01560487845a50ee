package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, contracts.PerformanceSummary{}, s)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.LossRate)
	assert.Zero(t, float64(s.ProfitFactor))
}

func TestSummarize_Scenario(t *testing.T) {
	trades := []contracts.Trade{
		withR(closedTrade(150, "2024-03-04T15:00:00Z"), 2.0),
		withR(closedTrade(-50, "2024-03-05T15:00:00Z"), -1.0),
		closedTrade(0, "2024-03-06T15:00:00Z"),
	}

	s := Summarize(trades)

	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 3, s.ClosedTrades)
	assert.Equal(t, 3, s.EvaluatedTrades)
	assert.Equal(t, 1, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.Equal(t, 1, s.BreakevenTrades)
	assert.InDelta(t, 100.0, s.TotalNetPnL, 1e-9)
	assert.InDelta(t, 33.33, s.WinRate, 0.01)
	assert.InDelta(t, 33.33, s.LossRate, 0.01)
	assert.InDelta(t, 150.0, s.AverageWin, 1e-9)
	assert.InDelta(t, -50.0, s.AverageLoss, 1e-9)
	assert.InDelta(t, 3.0, float64(s.ProfitFactor), 1e-9)
	assert.InDelta(t, 0.5, s.AverageRR, 1e-9)
	assert.InDelta(t, 100.0/3, s.Expectancy, 1e-9)
	assert.InDelta(t, 150.0, s.LargestWin, 1e-9)
	assert.InDelta(t, -50.0, s.LargestLoss, 1e-9)
	// cumulative 150 -> 100 -> 100
	assert.InDelta(t, 100.0/3, s.MaxDrawdown, 1e-9)
	assert.InDelta(t, 50.0, s.MaxDrawdownAmount, 1e-9)
	assert.Equal(t, 3, s.TradingDays)
	assert.InDelta(t, 1.0, s.AverageTradesPerDay, 1e-9)
}

func TestSummarize_ProfitFactorEdges(t *testing.T) {
	tests := []struct {
		name   string
		trades []contracts.Trade
		check  func(t *testing.T, pf contracts.ProfitFactor)
	}{
		{
			name:   "only wins is infinite",
			trades: []contracts.Trade{closedTrade(100, "2024-01-02T10:00:00Z")},
			check: func(t *testing.T, pf contracts.ProfitFactor) {
				assert.True(t, pf.IsInf())
			},
		},
		{
			name:   "no wins no losses is zero",
			trades: []contracts.Trade{closedTrade(0, "2024-01-02T10:00:00Z")},
			check: func(t *testing.T, pf contracts.ProfitFactor) {
				assert.Zero(t, float64(pf))
			},
		},
		{
			name:   "only losses is zero",
			trades: []contracts.Trade{closedTrade(-10, "2024-01-02T10:00:00Z")},
			check: func(t *testing.T, pf contracts.ProfitFactor) {
				assert.Zero(t, float64(pf))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Summarize(tt.trades).ProfitFactor)
		})
	}
}

func TestSummarize_CountInvariant(t *testing.T) {
	open := contracts.Trade{Status: contracts.TradeStatusOpen, EntryTime: ts("2024-01-02T10:00:00Z")}
	pending := contracts.Trade{Status: contracts.TradeStatusPending}
	cancelled := contracts.Trade{Status: contracts.TradeStatusCancelled}

	trades := []contracts.Trade{
		closedTrade(10, "2024-01-02T10:00:00Z"),
		closedTrade(-5, "2024-01-03T10:00:00Z"),
		closedTrade(0, "2024-01-04T10:00:00Z"),
		closedTrade(7, "2024-01-05T10:00:00Z"),
		open, pending, cancelled,
	}

	s := Summarize(trades)

	assert.Equal(t, 7, s.TotalTrades)
	assert.Equal(t, 2, s.OpenTrades)
	assert.Equal(t, 4, s.ClosedTrades)
	assert.Equal(t, s.EvaluatedTrades, s.WinningTrades+s.LosingTrades+s.BreakevenTrades)
	assert.Equal(t, 4, s.EvaluatedTrades)
	assert.GreaterOrEqual(t, s.WinRate, 0.0)
	assert.LessOrEqual(t, s.WinRate, 100.0)
	assert.GreaterOrEqual(t, s.LossRate, 0.0)
	assert.LessOrEqual(t, s.LossRate, 100.0)
}

func TestSummarize_MalformedClosedTradesExcluded(t *testing.T) {
	noExit := closedTrade(500, "2024-01-02T10:00:00Z")
	noExit.ExitTime = nil

	noPnL := closedTrade(0, "2024-01-03T10:00:00Z")
	noPnL.ProfitOrLoss = nil

	trades := []contracts.Trade{
		closedTrade(20, "2024-01-04T10:00:00Z"),
		noExit,
		noPnL,
	}

	s := Summarize(trades)

	assert.Equal(t, 3, s.ClosedTrades)
	assert.Equal(t, 1, s.EvaluatedTrades)
	assert.InDelta(t, 20.0, s.TotalNetPnL, 1e-9)
}

func TestSummarize_UnsortedInputUsesExitOrder(t *testing.T) {
	// chronological order is +100, -50, +20 (peak 100, trough 50)
	trades := []contracts.Trade{
		closedTrade(20, "2024-01-03T10:00:00Z"),
		closedTrade(100, "2024-01-01T10:00:00Z"),
		closedTrade(-50, "2024-01-02T10:00:00Z"),
	}

	s := Summarize(trades)

	assert.InDelta(t, 50.0, s.MaxDrawdown, 1e-9)
}

func TestSummarize_ExtremaStartAtZero(t *testing.T) {
	losses := Summarize([]contracts.Trade{
		closedTrade(-10, "2024-01-01T10:00:00Z"),
		closedTrade(-30, "2024-01-02T10:00:00Z"),
	})
	assert.Zero(t, losses.LargestWin)
	assert.InDelta(t, -30.0, losses.LargestLoss, 1e-9)

	wins := Summarize([]contracts.Trade{
		closedTrade(10, "2024-01-01T10:00:00Z"),
		closedTrade(30, "2024-01-02T10:00:00Z"),
	})
	assert.Zero(t, wins.LargestLoss)
	assert.InDelta(t, 30.0, wins.LargestWin, 1e-9)
}

func TestSummarize_CommissionsAreAbsolute(t *testing.T) {
	a := closedTrade(10, "2024-01-01T10:00:00Z")
	a.Commission = -2.5
	b := closedTrade(10, "2024-01-02T10:00:00Z")
	b.Commission = 1.5

	s := Summarize([]contracts.Trade{a, b})

	assert.InDelta(t, 4.0, s.TotalCommissions, 1e-9)
}

func TestSummarize_Streaks(t *testing.T) {
	pnls := []float64{10, 20, 0, 5, -1, -2, -3, 0, -4, 8}
	trades := make([]contracts.Trade, 0, len(pnls))
	for i, p := range pnls {
		exit := ts("2024-02-01T10:00:00Z").AddDate(0, 0, i)
		tr := closedTrade(p, exit.Format("2006-01-02T15:04:05Z07:00"))
		trades = append(trades, tr)
	}

	s := Summarize(trades)

	// breakeven trades do not break a streak
	assert.Equal(t, 3, s.MaxConsecutiveWins)
	assert.Equal(t, 4, s.MaxConsecutiveLosses)
	assert.Equal(t, 10, s.TradingDays)
}

func TestSummarizeWith_StartingEquity(t *testing.T) {
	trades := []contracts.Trade{
		closedTrade(-100, "2024-01-01T10:00:00Z"),
		closedTrade(50, "2024-01-02T10:00:00Z"),
	}

	zero := Summarize(trades)
	funded := SummarizeWith(trades, Options{StartingEquity: 1000})

	// zero baseline never sees a positive peak
	assert.Zero(t, zero.MaxDrawdown)
	assert.InDelta(t, 10.0, funded.MaxDrawdown, 1e-9)
	assert.InDelta(t, 100.0, funded.MaxDrawdownAmount, 1e-9)
	assert.InDelta(t, 950.0, funded.CurrentBalance, 1e-9)
	assert.InDelta(t, -50.0, zero.CurrentBalance, 1e-9)
}

func TestSummarize_InfiniteProfitFactorRoundTrip(t *testing.T) {
	s := Summarize([]contracts.Trade{closedTrade(100, "2024-01-02T10:00:00Z")})
	require.True(t, math.IsInf(float64(s.ProfitFactor), 1))

	data, err := s.ProfitFactor.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"Infinity"`, string(data))
}
