package contracts

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrade_StatusHelpers(t *testing.T) {
	pnl := 10.0
	exit := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		trade     Trade
		open      bool
		closed    bool
		evaluable bool
	}{
		{"open", Trade{Status: TradeStatusOpen}, true, false, false},
		{"pending counts as open", Trade{Status: TradeStatusPending}, true, false, false},
		{"cancelled", Trade{Status: TradeStatusCancelled}, false, false, false},
		{"closed without pnl", Trade{Status: TradeStatusClosed, ExitTime: &exit}, false, true, false},
		{"closed without exit", Trade{Status: TradeStatusClosed, ProfitOrLoss: &pnl}, false, true, false},
		{"closed complete", Trade{Status: TradeStatusClosed, ExitTime: &exit, ProfitOrLoss: &pnl}, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, tt.trade.IsOpen())
			assert.Equal(t, tt.closed, tt.trade.IsClosed())
			assert.Equal(t, tt.evaluable, tt.trade.IsEvaluable())
		})
	}
}

func TestTrade_PnL(t *testing.T) {
	loss := -42.5

	withPnL := Trade{Status: TradeStatusClosed, ProfitOrLoss: &loss}
	assert.True(t, withPnL.HasRealizedPnL())
	assert.Equal(t, -42.5, withPnL.PnL())

	// 미실현 거래는 0으로 취급
	withoutPnL := Trade{Status: TradeStatusOpen}
	assert.False(t, withoutPnL.HasRealizedPnL())
	assert.Zero(t, withoutPnL.PnL())
}

func TestTradeStatus_IsValid(t *testing.T) {
	assert.True(t, TradeStatusClosed.IsValid())
	assert.False(t, TradeStatus("closed").IsValid())
}

func TestTrade_InLocation(t *testing.T) {
	entry := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	tr := Trade{EntryTime: &entry}
	kst := time.FixedZone("KST", 9*60*60)

	converted := tr.InLocation(kst)

	require.NotNil(t, converted.EntryTime)
	assert.Equal(t, 23, converted.EntryTime.Hour())
	assert.Nil(t, converted.ExitTime)
	assert.Equal(t, 14, tr.EntryTime.Hour(), "original is untouched")
	assert.Equal(t, tr, tr.InLocation(nil))
}

func TestProfitFactor_JSON(t *testing.T) {
	tests := []struct {
		name string
		pf   ProfitFactor
		want string
	}{
		{"finite", ProfitFactor(2.5), `2.5`},
		{"zero", ProfitFactor(0), `0`},
		{"infinite", ProfitFactor(math.Inf(1)), `"Infinity"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.pf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var decoded ProfitFactor
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.pf, decoded)
		})
	}

	var bad ProfitFactor
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &bad))
}

func TestProfitFactor_String(t *testing.T) {
	assert.Equal(t, "∞", ProfitFactor(math.Inf(1)).String())
	assert.Equal(t, "1.50", ProfitFactor(1.5).String())
}

func TestTradeFilter_CacheKey(t *testing.T) {
	from := time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*60*60))

	assert.Equal(t, "u1::-:-", TradeFilter{UserID: "u1"}.CacheKey())
	assert.Equal(t, "u1:acc:2024-01-01T00:00:00Z:-", TradeFilter{UserID: "u1", AccountID: "acc", From: &from}.CacheKey())
	assert.Equal(t, "u1:acc", TradeFilter{UserID: "u1", AccountID: "acc", From: &from}.Scope())
}
