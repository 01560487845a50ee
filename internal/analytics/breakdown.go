package analytics

import (
	"errors"
	"fmt"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

// Dimension names a partitioning of the trade collection
type Dimension string

const (
	DimensionDayOfWeek  Dimension = "day-of-week"
	DimensionAssetClass Dimension = "asset-class"
	DimensionSymbol     Dimension = "symbol"
	DimensionDuration   Dimension = "duration"
	DimensionTag        Dimension = "tag"
)

// Dimensions lists every supported dimension
var Dimensions = []Dimension{
	DimensionDayOfWeek,
	DimensionAssetClass,
	DimensionSymbol,
	DimensionDuration,
	DimensionTag,
}

var ErrUnknownDimension = errors.New("unknown breakdown dimension")

// ParseDimension validates a dimension name
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Breakdown partitions trades along dim and summarizes each partition
func Breakdown(trades []contracts.Trade, dim Dimension, opts Options) ([]contracts.DimensionalSummary, error) {
	switch dim {
	case DimensionDayOfWeek:
		return ByDayOfWeekWith(trades, opts), nil
	case DimensionAssetClass:
		return ByAssetClassWith(trades, opts), nil
	case DimensionSymbol:
		return BySymbolWith(trades, opts), nil
	case DimensionDuration:
		return ByDurationWith(trades, opts), nil
	case DimensionTag:
		return ByTagWith(trades, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
}
