package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdownPercent(t *testing.T) {
	tests := []struct {
		name string
		pnl  []float64
		want float64
	}{
		{"empty", nil, 0},
		{"monotonic equity", []float64{10, 10, 10}, 0},
		{"peak to trough", []float64{100, -50, 20}, 50},
		{"never positive", []float64{-10, -20, 5}, 0},
		{"recovers above old peak", []float64{100, -25, 200, -150}, 54.54545454545455},
		{"full wipeout", []float64{100, -100}, 100},
		{"below zero after peak", []float64{50, -100}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdownPercent(tt.pnl), 1e-9)
		})
	}
}

func TestMaxDrawdownPercentFrom_ZeroMatchesDefault(t *testing.T) {
	pnl := []float64{30, -10, 5, -40, 60}
	assert.Equal(t, MaxDrawdownPercent(pnl), MaxDrawdownPercentFrom(0, pnl))
}

func TestMaxDrawdownPercentFrom_StartingEquity(t *testing.T) {
	// 10000 -> 9500 -> 9000 -> 9800
	assert.InDelta(t, 10.0, MaxDrawdownPercentFrom(10000, []float64{-500, -500, 800}), 1e-9)
}

func TestMaxDrawdownAmount(t *testing.T) {
	tests := []struct {
		name     string
		starting float64
		pnl      []float64
		want     float64
	}{
		{"empty", 0, nil, 0},
		{"losses from zero", 0, []float64{-10, -20}, 30},
		{"peak to trough", 0, []float64{100, -50, 20}, 50},
		{"with starting equity", 1000, []float64{200, -300, 50}, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdownAmount(tt.starting, tt.pnl), 1e-9)
		})
	}
}
