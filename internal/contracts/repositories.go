package contracts

import (
	"context"
	"fmt"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// TradeRepository supplies journal trades to the analytics service
type TradeRepository interface {
	ListTrades(ctx context.Context, filter TradeFilter) ([]Trade, error)
}

// TradeWriter stores imported trades
type TradeWriter interface {
	SaveTrades(ctx context.Context, trades []Trade) (int, error)
}

// TradeFilter selects the trades of one user, optionally narrowed to an
// account and a time window. The window applies to the exit time, or to the
// entry time for trades that have not exited yet.
type TradeFilter struct {
	UserID    string     `json:"user_id"`
	AccountID string     `json:"account_id,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
}

// CacheKey returns a stable key for caching results of this filter
func (f TradeFilter) CacheKey() string {
	key := fmt.Sprintf("%s:%s", f.UserID, f.AccountID)
	if f.From != nil {
		key += ":" + f.From.UTC().Format(time.RFC3339)
	} else {
		key += ":-"
	}
	if f.To != nil {
		key += ":" + f.To.UTC().Format(time.RFC3339)
	} else {
		key += ":-"
	}
	return key
}

// Scope returns the user/account prefix of the cache key
func (f TradeFilter) Scope() string {
	return fmt.Sprintf("%s:%s", f.UserID, f.AccountID)
}
