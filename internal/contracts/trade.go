package contracts

import (
	"time"
)

// TradeStatus is the lifecycle state of a journal trade
type TradeStatus string

const (
	TradeStatusOpen      TradeStatus = "OPEN"
	TradeStatusClosed    TradeStatus = "CLOSED"
	TradeStatusPending   TradeStatus = "PENDING"
	TradeStatusCancelled TradeStatus = "CANCELLED"
)

// IsValid reports whether s is one of the known statuses
func (s TradeStatus) IsValid() bool {
	switch s {
	case TradeStatusOpen, TradeStatusClosed, TradeStatusPending, TradeStatusCancelled:
		return true
	}
	return false
}

// TradeSide is the direction of a trade
type TradeSide string

const (
	SideLong  TradeSide = "LONG"
	SideShort TradeSide = "SHORT"
)

// Tag is a free-form label attached to a trade (strategy, setup, mistake...)
type Tag struct {
	Name string `json:"name"`
}

// Trade is a journal entry as supplied by the trade repository.
// ⭐ SSOT: 분석 엔진 입력 레코드 (read-only)
type Trade struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	AccountID  string      `json:"account_id,omitempty"`
	Symbol     string      `json:"symbol"`
	AssetClass string      `json:"asset_class,omitempty"`
	Side       TradeSide   `json:"side,omitempty"`
	Status     TradeStatus `json:"status"`

	EntryTime *time.Time `json:"entry_time,omitempty"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`

	ProfitOrLoss *float64 `json:"profit_or_loss,omitempty"`
	Commission   float64  `json:"commission"`
	RMultiple    *float64 `json:"r_multiple,omitempty"`

	Tags  []Tag  `json:"tags,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// IsClosed reports whether the trade is closed
func (t Trade) IsClosed() bool {
	return t.Status == TradeStatusClosed
}

// IsOpen reports whether the trade still holds (or waits for) a position
func (t Trade) IsOpen() bool {
	return t.Status == TradeStatusOpen || t.Status == TradeStatusPending
}

// HasRealizedPnL reports whether a realized P&L value is present
func (t Trade) HasRealizedPnL() bool {
	return t.ProfitOrLoss != nil
}

// IsEvaluable reports whether the trade takes part in P&L statistics:
// closed, with a realized P&L and an exit timestamp.
func (t Trade) IsEvaluable() bool {
	return t.IsClosed() && t.HasRealizedPnL() && t.ExitTime != nil
}

// PnL returns the realized P&L or 0 when absent
func (t Trade) PnL() float64 {
	if t.ProfitOrLoss == nil {
		return 0
	}
	return *t.ProfitOrLoss
}

// InLocation returns a copy with both timestamps converted to loc.
// Calendar-based analytics (weekday, duration, daily P&L) follow the location of the timestamps.
func (t Trade) InLocation(loc *time.Location) Trade {
	if loc == nil {
		return t
	}
	if t.EntryTime != nil {
		entry := t.EntryTime.In(loc)
		t.EntryTime = &entry
	}
	if t.ExitTime != nil {
		exit := t.ExitTime.In(loc)
		t.ExitTime = &exit
	}
	return t
}

// TagNames returns the tag names in their original order
func (t Trade) TagNames() []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}
	return names
}
