package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

func TestClassifyDuration(t *testing.T) {
	trade := func(entry, exit string) contracts.Trade {
		return contracts.Trade{
			Status:    contracts.TradeStatusClosed,
			EntryTime: ts(entry),
			ExitTime:  ts(exit),
		}
	}

	tests := []struct {
		name  string
		trade contracts.Trade
		want  contracts.DurationBucket
	}{
		{"same day", trade("2024-01-01T09:00:00Z", "2024-01-01T17:00:00Z"), contracts.DurationIntraday},
		{"crosses midnight", trade("2024-01-01T23:50:00Z", "2024-01-02T00:10:00Z"), contracts.DurationShortTerm},
		{"seven days", trade("2024-01-01T10:00:00Z", "2024-01-08T09:00:00Z"), contracts.DurationShortTerm},
		{"eight days", trade("2024-01-01T10:00:00Z", "2024-01-09T10:00:00Z"), contracts.DurationMediumTerm},
		{"twenty-eight days", trade("2024-01-01T10:00:00Z", "2024-01-29T10:00:00Z"), contracts.DurationMediumTerm},
		{"twenty-nine days", trade("2024-01-01T10:00:00Z", "2024-01-30T10:00:00Z"), contracts.DurationLongTerm},
		{"ninety days", trade("2024-01-01T10:00:00Z", "2024-03-31T10:00:00Z"), contracts.DurationLongTerm},
		{"ninety-one days", trade("2024-01-01T10:00:00Z", "2024-04-01T10:00:00Z"), contracts.DurationVeryLongTerm},
		{"exit before entry", trade("2024-01-05T10:00:00Z", "2024-01-03T10:00:00Z"), contracts.DurationIntraday},
		{"open trade", contracts.Trade{Status: contracts.TradeStatusOpen, EntryTime: ts("2024-01-01T10:00:00Z")}, contracts.DurationUnknown},
		{"closed without entry", contracts.Trade{Status: contracts.TradeStatusClosed, ExitTime: ts("2024-01-01T10:00:00Z")}, contracts.DurationUnknown},
		{"closed without exit", contracts.Trade{Status: contracts.TradeStatusClosed, EntryTime: ts("2024-01-01T10:00:00Z")}, contracts.DurationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDuration(tt.trade))
		})
	}
}

func TestClassifyDuration_FollowsTimestampLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	// 14:00Z and 16:00Z are the same UTC day but different days in KST (23:00 / 01:00)
	tr := contracts.Trade{
		Status:    contracts.TradeStatusClosed,
		EntryTime: ts("2024-01-01T14:00:00Z"),
		ExitTime:  ts("2024-01-01T16:00:00Z"),
	}

	assert.Equal(t, contracts.DurationIntraday, ClassifyDuration(tr))
	assert.Equal(t, contracts.DurationShortTerm, ClassifyDuration(tr.InLocation(seoul)))
}
