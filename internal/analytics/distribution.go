package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

const (
	// DefaultHistogramBuckets is the bucket count dashboards use
	DefaultHistogramBuckets = 10

	// MaxHistogramBuckets bounds the bucket count a fixed width may produce
	MaxHistogramBuckets = 1000
)

var (
	ErrInvalidBucketCount = errors.New("histogram bucket count must be positive")
	ErrInvalidBucketWidth = errors.New("histogram bucket width must be a positive finite number")
	ErrTooManyBuckets     = fmt.Errorf("histogram would need more than %d buckets", MaxHistogramBuckets)
)

// BuildHistogram distributes the realized P&L of closed trades into
// contiguous equal-width buckets covering [min, max].
//
// fixedWidth <= 0 means "not set": the range is split into numBuckets
// buckets. A positive fixedWidth decides the width and the bucket count
// becomes ceil(range / width). Buckets are half-open [min, max) except the
// last one, which also holds the maximum. Empty buckets are dropped; callers
// wanting a dense histogram pad them back in.
func BuildHistogram(trades []contracts.Trade, numBuckets int, fixedWidth float64) ([]contracts.PnlDistributionBucket, error) {
	if numBuckets <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBucketCount, numBuckets)
	}
	if fixedWidth < 0 || math.IsNaN(fixedWidth) || math.IsInf(fixedWidth, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBucketWidth, fixedWidth)
	}

	values := lo.FilterMap(trades, func(t contracts.Trade, _ int) (float64, bool) {
		if !t.IsClosed() || !t.HasRealizedPnL() {
			return 0, false
		}
		return t.PnL(), true
	})
	if len(values) == 0 {
		return []contracts.PnlDistributionBucket{}, nil
	}

	minPnL, maxPnL := widenDegenerate(lo.Min(values), lo.Max(values))

	width := (maxPnL - minPnL) / float64(numBuckets)
	count := numBuckets
	if fixedWidth > 0 {
		width = fixedWidth
		count = max(int(math.Ceil((maxPnL-minPnL)/width)), 1)
		if count > MaxHistogramBuckets {
			return nil, fmt.Errorf("%w: width %v over range %v", ErrTooManyBuckets, width, maxPnL-minPnL)
		}
	}

	if width <= 0 {
		return []contracts.PnlDistributionBucket{
			newBucket(minPnL, maxPnL, len(values)),
		}, nil
	}

	buckets := make([]contracts.PnlDistributionBucket, count)
	for i := range buckets {
		lower := minPnL + float64(i)*width
		upper := minPnL + float64(i+1)*width
		buckets[i] = newBucket(lower, upper, 0)
	}
	// 부동소수점 오차 보정: 마지막 구간 상한은 정확히 max
	last := len(buckets) - 1
	buckets[last] = newBucket(buckets[last].RangeMin, maxPnL, 0)

	for _, v := range values {
		for i := range buckets {
			b := &buckets[i]
			if v < b.RangeMin {
				continue
			}
			if v < b.RangeMax || (i == last && v <= b.RangeMax) {
				b.Count++
				break
			}
		}
	}

	return lo.Filter(buckets, func(b contracts.PnlDistributionBucket, _ int) bool {
		return b.Count > 0
	}), nil
}

// widenDegenerate gives a single repeated value a drawable range:
// [-1, 1] around zero, otherwise ±10% of the value (at least ±1).
func widenDegenerate(minPnL, maxPnL float64) (float64, float64) {
	if minPnL != maxPnL {
		return minPnL, maxPnL
	}
	if maxPnL == 0 {
		return -1, 1
	}
	pad := math.Max(math.Abs(maxPnL)*0.1, 1)
	return minPnL - pad, maxPnL + pad
}

func newBucket(lower, upper float64, count int) contracts.PnlDistributionBucket {
	return contracts.PnlDistributionBucket{
		Label:    bucketLabel(lower, upper),
		Count:    count,
		RangeMin: lower,
		RangeMax: upper,
	}
}

// bucketLabel renders whole-unit bounds, e.g. "-100 to -50".
// decimal rounding avoids "-0" for small negative bounds.
func bucketLabel(lower, upper float64) string {
	return fmt.Sprintf("%s to %s",
		decimal.NewFromFloat(lower).StringFixed(0),
		decimal.NewFromFloat(upper).StringFixed(0),
	)
}
