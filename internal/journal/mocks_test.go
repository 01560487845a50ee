package journal

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) ListTrades(ctx context.Context, filter contracts.TradeFilter) ([]contracts.Trade, error) {
	args := m.Called(ctx, filter)
	trades, _ := args.Get(0).([]contracts.Trade)
	return trades, args.Error(1)
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) SaveTrades(ctx context.Context, trades []contracts.Trade) (int, error) {
	args := m.Called(ctx, trades)
	return args.Int(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) (bool, error) {
	args := m.Called(ctx, key, dest, ttl, fn)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	args := m.Called(ctx, pattern)
	return args.Int(0), args.Error(1)
}

func closed(id string, pnl float64, exit string) contracts.Trade {
	exitTime, err := time.Parse(time.RFC3339, exit)
	if err != nil {
		panic(err)
	}
	entry := exitTime.Add(-2 * time.Hour)
	return contracts.Trade{
		ID:           id,
		UserID:       "u1",
		Symbol:       "AAPL",
		AssetClass:   "Stock",
		Status:       contracts.TradeStatusClosed,
		EntryTime:    &entry,
		ExitTime:     &exitTime,
		ProfitOrLoss: &pnl,
	}
}
