package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

func tradesWithPnL(values ...float64) []contracts.Trade {
	trades := make([]contracts.Trade, 0, len(values))
	for _, v := range values {
		trades = append(trades, closedTrade(v, "2024-01-02T10:00:00Z"))
	}
	return trades
}

func TestBuildHistogram_EqualWidth(t *testing.T) {
	buckets, err := BuildHistogram(tradesWithPnL(-100, -50, 0, 50, 100), 4, 0)
	require.NoError(t, err)
	require.Len(t, buckets, 4)

	assert.Equal(t, []int{1, 1, 1, 2}, []int{buckets[0].Count, buckets[1].Count, buckets[2].Count, buckets[3].Count})
	assert.Equal(t, "-100 to -50", buckets[0].Label)
	assert.Equal(t, "-50 to 0", buckets[1].Label)
	assert.Equal(t, "0 to 50", buckets[2].Label)
	assert.Equal(t, "50 to 100", buckets[3].Label)
	assert.Equal(t, 100.0, buckets[3].RangeMax, "maximum lands in the last bucket")
}

func TestBuildHistogram_Empty(t *testing.T) {
	tests := []struct {
		name   string
		trades []contracts.Trade
	}{
		{"no trades", nil},
		{"only open", []contracts.Trade{{Status: contracts.TradeStatusOpen}}},
		{"closed without pnl", []contracts.Trade{{Status: contracts.TradeStatusClosed}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets, err := BuildHistogram(tt.trades, DefaultHistogramBuckets, 0)
			require.NoError(t, err)
			assert.NotNil(t, buckets)
			assert.Empty(t, buckets)
		})
	}
}

func TestBuildHistogram_DegenerateRange(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"zero", 0, -1, 1},
		{"large value", 50, 45, 55},
		{"small value", 5, 4, 6},
		{"negative value", -200, -220, -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets, err := BuildHistogram(tradesWithPnL(tt.value, tt.value), 1, 0)
			require.NoError(t, err)
			require.Len(t, buckets, 1)
			assert.Equal(t, 2, buckets[0].Count)
			assert.InDelta(t, tt.min, buckets[0].RangeMin, 1e-9)
			assert.InDelta(t, tt.max, buckets[0].RangeMax, 1e-9)
		})
	}
}

func TestBuildHistogram_FixedWidth(t *testing.T) {
	buckets, err := BuildHistogram(tradesWithPnL(0, 100), DefaultHistogramBuckets, 30)
	require.NoError(t, err)

	// [0,30) [30,60) [60,90) [90,100]; the middle two are empty
	require.Len(t, buckets, 2)
	assert.Equal(t, 0.0, buckets[0].RangeMin)
	assert.Equal(t, 30.0, buckets[0].RangeMax)
	assert.Equal(t, 90.0, buckets[1].RangeMin)
	assert.Equal(t, 100.0, buckets[1].RangeMax)
}

func TestBuildHistogram_InvalidArguments(t *testing.T) {
	trades := tradesWithPnL(0, 100)

	_, err := BuildHistogram(trades, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidBucketCount)

	_, err = BuildHistogram(trades, -3, 0)
	assert.ErrorIs(t, err, ErrInvalidBucketCount)

	_, err = BuildHistogram(trades, 10, -5)
	assert.ErrorIs(t, err, ErrInvalidBucketWidth)

	_, err = BuildHistogram(trades, 10, 0.01)
	assert.ErrorIs(t, err, ErrTooManyBuckets)
}

func TestBuildHistogram_CountsCoverAllValues(t *testing.T) {
	values := []float64{-312.4, -87.1, -0.5, 0, 3.3, 19.99, 42, 42, 118.7, 560.25, -12}

	for _, n := range []int{1, 3, 7, 10, 25} {
		buckets, err := BuildHistogram(tradesWithPnL(values...), n, 0)
		require.NoError(t, err)
		require.NotEmpty(t, buckets)

		total := 0
		for i, b := range buckets {
			total += b.Count
			assert.Positive(t, b.Count)
			assert.Less(t, b.RangeMin, b.RangeMax)
			if i > 0 {
				assert.LessOrEqual(t, buckets[i-1].RangeMax, b.RangeMin)
			}
		}
		assert.Equal(t, len(values), total, "buckets=%d", n)
		assert.Equal(t, -312.4, buckets[0].RangeMin)
		assert.Equal(t, 560.25, buckets[len(buckets)-1].RangeMax)
	}
}
