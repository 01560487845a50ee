package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

var weekdayLabels = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func TestByDayOfWeek_AlwaysSevenDays(t *testing.T) {
	tests := []struct {
		name   string
		trades []contracts.Trade
	}{
		{"empty", nil},
		{"single monday", []contracts.Trade{closedTrade(10, "2024-01-01T10:00:00Z")}},
		{"open only", []contracts.Trade{{Status: contracts.TradeStatusOpen}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ByDayOfWeek(tt.trades)
			require.Len(t, result, 7)
			assert.Equal(t, weekdayLabels, labels(result))
		})
	}
}

func TestByDayOfWeek_GroupsByExitDay(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-05 a Friday
	trades := []contracts.Trade{
		closedTrade(10, "2024-01-01T10:00:00Z"),
		closedTrade(-4, "2024-01-08T10:00:00Z"),
		closedTrade(25, "2024-01-05T10:00:00Z"),
		{Status: contracts.TradeStatusOpen, EntryTime: ts("2024-01-02T10:00:00Z")},
	}

	result := ByDayOfWeek(trades)

	monday, _ := findLabel(result, "Monday")
	assert.Equal(t, 2, monday.TotalTrades)
	assert.InDelta(t, 6.0, monday.TotalNetPnL, 1e-9)

	friday, _ := findLabel(result, "Friday")
	assert.Equal(t, 1, friday.TotalTrades)

	tuesday, _ := findLabel(result, "Tuesday")
	assert.Zero(t, tuesday.TotalTrades, "open trades have no exit day")
}

func TestByAssetClass_SortedByNetPnL(t *testing.T) {
	trades := []contracts.Trade{
		withAsset(closedTrade(-20, "2024-01-01T10:00:00Z"), "Crypto"),
		withAsset(closedTrade(50, "2024-01-02T10:00:00Z"), "Stock"),
		withAsset(closedTrade(10, "2024-01-03T10:00:00Z"), ""),
		withAsset(closedTrade(5, "2024-01-04T10:00:00Z"), "Forex"),
		withAsset(closedTrade(5, "2024-01-05T10:00:00Z"), "Futures"),
	}

	result := ByAssetClass(trades)

	// Forex and Futures tie; first appearance wins
	assert.Equal(t, []string{"Stock", UnknownAssetLabel, "Forex", "Futures", "Crypto"}, labels(result))
}

func TestBySymbol_UppercasesAndDefaults(t *testing.T) {
	trades := []contracts.Trade{
		withSymbol(closedTrade(10, "2024-01-01T10:00:00Z"), "eurusd"),
		withSymbol(closedTrade(15, "2024-01-02T10:00:00Z"), "EURUSD"),
		withSymbol(closedTrade(-5, "2024-01-03T10:00:00Z"), ""),
		withSymbol(closedTrade(40, "2024-01-04T10:00:00Z"), "btcusd"),
	}

	result := BySymbol(trades)

	assert.Equal(t, []string{"BTCUSD", "EURUSD", UnknownSymbolLabel}, labels(result))
	eurusd, _ := findLabel(result, "EURUSD")
	assert.Equal(t, 2, eurusd.TotalTrades)
	assert.InDelta(t, 25.0, eurusd.TotalNetPnL, 1e-9)
}

func TestByDuration_FixedOrderAndUnknown(t *testing.T) {
	longTrade := closedTrade(30, "2024-03-15T10:00:00Z")
	longTrade.EntryTime = ts("2024-02-01T10:00:00Z")

	trades := []contracts.Trade{
		longTrade,
		closedTrade(10, "2024-01-01T10:00:00Z"),
		{Status: contracts.TradeStatusOpen, EntryTime: ts("2024-01-02T10:00:00Z")},
	}

	result := ByDuration(trades)

	assert.Equal(t, []string{
		string(contracts.DurationIntraday),
		string(contracts.DurationLongTerm),
		string(contracts.DurationUnknown),
	}, labels(result))

	unknown, _ := findLabel(result, string(contracts.DurationUnknown))
	assert.Equal(t, 1, unknown.TotalTrades)
	assert.Equal(t, 1, unknown.OpenTrades)
}

func TestByDuration_UnknownPresentWhenEmpty(t *testing.T) {
	result := ByDuration([]contracts.Trade{closedTrade(10, "2024-01-01T10:00:00Z")})

	assert.Equal(t, []string{
		string(contracts.DurationIntraday),
		string(contracts.DurationUnknown),
	}, labels(result))
}

func TestByTag_NonExclusive(t *testing.T) {
	trades := []contracts.Trade{
		withTags(closedTrade(100, "2024-01-01T10:00:00Z"), "breakout", "news"),
		withTags(closedTrade(-30, "2024-01-02T10:00:00Z"), "news"),
		closedTrade(5, "2024-01-03T10:00:00Z"),
	}

	result := ByTag(trades)

	breakout, ok := findLabel(result, "breakout")
	require.True(t, ok)
	assert.Equal(t, 1, breakout.TotalTrades)
	assert.InDelta(t, 100.0, breakout.TotalNetPnL, 1e-9)

	news, ok := findLabel(result, "news")
	require.True(t, ok)
	assert.Equal(t, 2, news.TotalTrades)
	assert.InDelta(t, 70.0, news.TotalNetPnL, 1e-9)

	uncategorized, ok := findLabel(result, UncategorizedLabel)
	require.True(t, ok)
	assert.Equal(t, 1, uncategorized.TotalTrades)

	assert.Equal(t, []string{"breakout", "news", UncategorizedLabel}, labels(result))
}

func TestByTag_DuplicateAndBlankNames(t *testing.T) {
	trades := []contracts.Trade{
		withTags(closedTrade(10, "2024-01-01T10:00:00Z"), "scalp", "scalp", " "),
	}

	result := ByTag(trades)

	scalp, ok := findLabel(result, "scalp")
	require.True(t, ok)
	assert.Equal(t, 1, scalp.TotalTrades, "a trade counts once per tag")

	_, ok = findLabel(result, UnnamedTagLabel)
	assert.True(t, ok)
}

func TestPartitions_MatchIndependentSummaries(t *testing.T) {
	a := withSymbol(closedTrade(100, "2024-01-01T10:00:00Z"), "AAPL")
	b := withSymbol(closedTrade(-40, "2024-01-02T10:00:00Z"), "AAPL")
	c := withSymbol(closedTrade(15, "2024-01-03T10:00:00Z"), "MSFT")

	result := BySymbol([]contracts.Trade{a, b, c})

	aapl, _ := findLabel(result, "AAPL")
	assert.Equal(t, Summarize([]contracts.Trade{a, b}), aapl.PerformanceSummary)
}

func TestBreakdown(t *testing.T) {
	trades := []contracts.Trade{closedTrade(10, "2024-01-01T10:00:00Z")}

	for _, dim := range Dimensions {
		t.Run(string(dim), func(t *testing.T) {
			result, err := Breakdown(trades, dim, Options{})
			require.NoError(t, err)
			assert.NotEmpty(t, result)
		})
	}

	_, err := Breakdown(trades, Dimension("hour"), Options{})
	assert.ErrorIs(t, err, ErrUnknownDimension)

	_, err = ParseDimension("hour")
	assert.ErrorIs(t, err, ErrUnknownDimension)

	dim, err := ParseDimension("tag")
	require.NoError(t, err)
	assert.Equal(t, DimensionTag, dim)
}
