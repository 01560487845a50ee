package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ProfitFactor is gross profit over gross loss magnitude.
// +Inf (no losses, some wins) is encoded as the JSON string "Infinity".
type ProfitFactor float64

// IsInf reports whether the profit factor is unbounded
func (p ProfitFactor) IsInf() bool {
	return math.IsInf(float64(p), 1)
}

// MarshalJSON implements json.Marshaler
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.IsInf() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(p))
}

// UnmarshalJSON implements json.Unmarshaler
func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*p = ProfitFactor(math.Inf(1))
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid profit factor %s: %w", string(data), err)
	}
	*p = ProfitFactor(v)
	return nil
}

// String formats the profit factor for reports
func (p ProfitFactor) String() string {
	if p.IsInf() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(p))
}

// PerformanceSummary holds dashboard statistics for a trade collection.
// ⭐ SSOT: 성과 통계 결과 구조체
type PerformanceSummary struct {
	// 건수
	TotalTrades     int `json:"total_trades"`
	OpenTrades      int `json:"open_trades"`
	ClosedTrades    int `json:"closed_trades"`
	EvaluatedTrades int `json:"evaluated_trades"` // closed + P&L + exit time
	WinningTrades   int `json:"winning_trades"`
	LosingTrades    int `json:"losing_trades"`
	BreakevenTrades int `json:"breakeven_trades"`

	// 손익
	TotalNetPnL      float64 `json:"total_net_pnl"`
	TotalCommissions float64 `json:"total_commissions"`
	CurrentBalance   float64 `json:"current_balance"`

	// 비율 (%)
	WinRate  float64 `json:"win_rate"`
	LossRate float64 `json:"loss_rate"`

	AverageWin   float64      `json:"average_win"`
	AverageLoss  float64      `json:"average_loss"` // negative or zero
	AverageRR    float64      `json:"average_rr"`
	ProfitFactor ProfitFactor `json:"profit_factor"`
	Expectancy   float64      `json:"expectancy"`

	MaxDrawdown       float64 `json:"max_drawdown"` // percent of peak
	MaxDrawdownAmount float64 `json:"max_drawdown_amount"`

	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	TradingDays          int     `json:"trading_days"`
	AverageTradesPerDay  float64 `json:"average_trades_per_day"`
}

// DimensionalSummary is a PerformanceSummary for one partition
// (weekday, asset class, symbol, duration bucket or tag).
type DimensionalSummary struct {
	Label string `json:"label"`
	PerformanceSummary
}

// PnlDistributionBucket is one histogram bar of realized P&L
type PnlDistributionBucket struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	RangeMin float64 `json:"range_min"`
	RangeMax float64 `json:"range_max"`
}

// DurationBucket classifies how long a position was held
type DurationBucket string

const (
	DurationIntraday     DurationBucket = "Intraday (<1 Day)"
	DurationShortTerm    DurationBucket = "Short-Term (1-7 Days)"
	DurationMediumTerm   DurationBucket = "Medium-Term (1-4 Weeks)"
	DurationLongTerm     DurationBucket = "Long-Term (1-3 Months)"
	DurationVeryLongTerm DurationBucket = "Very Long-Term (>3 Months)"
	DurationUnknown      DurationBucket = "Unknown Duration"
)

// DurationBucketOrder is the fixed display order of duration buckets
var DurationBucketOrder = []DurationBucket{
	DurationIntraday,
	DurationShortTerm,
	DurationMediumTerm,
	DurationLongTerm,
	DurationVeryLongTerm,
	DurationUnknown,
}

// EquityPoint is one point of the cumulative P&L curve
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// DailyPerformance aggregates evaluated trades by exit date
type DailyPerformance struct {
	Date          string  `json:"date"` // 2006-01-02
	Trades        int     `json:"trades"`
	PnL           float64 `json:"pnl"`
	WinRate       float64 `json:"win_rate"`
	CumulativePnL float64 `json:"cumulative_pnl"`
}

// MonthlyPerformance aggregates evaluated trades by exit month
type MonthlyPerformance struct {
	Month    string  `json:"month"` // 2006-01
	Trades   int     `json:"trades"`
	PnL      float64 `json:"pnl"`
	WinRate  float64 `json:"win_rate"`
	BestDay  float64 `json:"best_day"`
	WorstDay float64 `json:"worst_day"`
}

// Dashboard bundles every statistic the journal dashboard renders
type Dashboard struct {
	Summary      PerformanceSummary      `json:"summary"`
	ByDayOfWeek  []DimensionalSummary    `json:"by_day_of_week"`
	ByAssetClass []DimensionalSummary    `json:"by_asset_class"`
	BySymbol     []DimensionalSummary    `json:"by_symbol"`
	ByDuration   []DimensionalSummary    `json:"by_duration"`
	ByTag        []DimensionalSummary    `json:"by_tag"`
	Distribution []PnlDistributionBucket `json:"distribution"`
	EquityCurve  []EquityPoint           `json:"equity_curve"`
	Daily        []DailyPerformance      `json:"daily"`
	Monthly      []MonthlyPerformance    `json:"monthly"`
	GeneratedAt  time.Time               `json:"generated_at"`
}
