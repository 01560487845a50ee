package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

const (
	UnknownAssetLabel  = "Unknown Asset"
	UnknownSymbolLabel = "Unknown Symbol"
	UncategorizedLabel = "Uncategorized"
	UnnamedTagLabel    = "Unnamed Tag"
)

// Weekdays in calendar order, Sunday first
var Weekdays = []time.Weekday{
	time.Sunday,
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// partition keeps trades grouped per key plus the order keys first appeared in
type partition struct {
	order  []string
	groups map[string][]contracts.Trade
}

func newPartition() *partition {
	return &partition{groups: make(map[string][]contracts.Trade)}
}

func (p *partition) add(key string, t contracts.Trade) {
	if _, ok := p.groups[key]; !ok {
		p.order = append(p.order, key)
	}
	p.groups[key] = append(p.groups[key], t)
}

// ensure registers an empty group so it is reported even without trades
func (p *partition) ensure(key string) {
	if _, ok := p.groups[key]; !ok {
		p.order = append(p.order, key)
		p.groups[key] = nil
	}
}

// summarize runs the aggregator independently for every group, in key order
func (p *partition) summarize(opts Options) []contracts.DimensionalSummary {
	result := make([]contracts.DimensionalSummary, 0, len(p.order))
	for _, key := range p.order {
		result = append(result, contracts.DimensionalSummary{
			Label:              key,
			PerformanceSummary: SummarizeWith(p.groups[key], opts),
		})
	}
	return result
}

// groupExclusive assigns each trade to exactly one key
func groupExclusive(trades []contracts.Trade, keyFn func(contracts.Trade) string) *partition {
	p := newPartition()
	for _, t := range trades {
		p.add(keyFn(t), t)
	}
	return p
}

// groupFanOut assigns each trade to every key keysFn returns.
// Kept apart from groupExclusive: partitions built here overlap.
func groupFanOut(trades []contracts.Trade, keysFn func(contracts.Trade) []string) *partition {
	p := newPartition()
	for _, t := range trades {
		for _, key := range keysFn(t) {
			p.add(key, t)
		}
	}
	return p
}

// sortByNetPnL orders summaries by total net P&L, highest first.
// Ties keep first-appearance order.
func sortByNetPnL(summaries []contracts.DimensionalSummary) []contracts.DimensionalSummary {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalNetPnL > summaries[j].TotalNetPnL
	})
	return summaries
}

// ByDayOfWeek groups closed trades by the weekday of their exit.
// All seven days are returned, Sunday to Saturday, even when empty.
func ByDayOfWeek(trades []contracts.Trade) []contracts.DimensionalSummary {
	return ByDayOfWeekWith(trades, Options{})
}

// ByDayOfWeekWith is ByDayOfWeek with explicit options
func ByDayOfWeekWith(trades []contracts.Trade, opts Options) []contracts.DimensionalSummary {
	p := newPartition()
	for _, day := range Weekdays {
		p.ensure(day.String())
	}

	for _, t := range trades {
		if !t.IsClosed() || t.ExitTime == nil {
			continue
		}
		p.add(t.ExitTime.Weekday().String(), t)
	}

	return p.summarize(opts)
}

// ByAssetClass groups trades by asset class, best performing first
func ByAssetClass(trades []contracts.Trade) []contracts.DimensionalSummary {
	return ByAssetClassWith(trades, Options{})
}

// ByAssetClassWith is ByAssetClass with explicit options
func ByAssetClassWith(trades []contracts.Trade, opts Options) []contracts.DimensionalSummary {
	p := groupExclusive(trades, func(t contracts.Trade) string {
		if t.AssetClass == "" {
			return UnknownAssetLabel
		}
		return t.AssetClass
	})
	return sortByNetPnL(p.summarize(opts))
}

// BySymbol groups trades by upper-cased symbol, best performing first
func BySymbol(trades []contracts.Trade) []contracts.DimensionalSummary {
	return BySymbolWith(trades, Options{})
}

// BySymbolWith is BySymbol with explicit options
func BySymbolWith(trades []contracts.Trade, opts Options) []contracts.DimensionalSummary {
	p := groupExclusive(trades, func(t contracts.Trade) string {
		if t.Symbol == "" {
			return UnknownSymbolLabel
		}
		return strings.ToUpper(t.Symbol)
	})
	return sortByNetPnL(p.summarize(opts))
}

// ByDuration groups trades by holding-period bucket in the fixed bucket
// order. Empty buckets are dropped except Unknown, which is always present.
func ByDuration(trades []contracts.Trade) []contracts.DimensionalSummary {
	return ByDurationWith(trades, Options{})
}

// ByDurationWith is ByDuration with explicit options
func ByDurationWith(trades []contracts.Trade, opts Options) []contracts.DimensionalSummary {
	p := newPartition()
	for _, bucket := range contracts.DurationBucketOrder {
		p.ensure(string(bucket))
	}

	for _, t := range trades {
		p.add(string(ClassifyDuration(t)), t)
	}

	return lo.Filter(p.summarize(opts), func(s contracts.DimensionalSummary, _ int) bool {
		return s.TotalTrades > 0 || s.Label == string(contracts.DurationUnknown)
	})
}

// ByTag groups trades by tag, best performing first.
// A trade counts once in every distinct tag it carries; untagged trades
// land in Uncategorized.
func ByTag(trades []contracts.Trade) []contracts.DimensionalSummary {
	return ByTagWith(trades, Options{})
}

// ByTagWith is ByTag with explicit options
func ByTagWith(trades []contracts.Trade, opts Options) []contracts.DimensionalSummary {
	p := groupFanOut(trades, tagKeys)
	return sortByNetPnL(p.summarize(opts))
}

func tagKeys(t contracts.Trade) []string {
	if len(t.Tags) == 0 {
		return []string{UncategorizedLabel}
	}

	names := lo.Map(t.Tags, func(tag contracts.Tag, _ int) string {
		if strings.TrimSpace(tag.Name) == "" {
			return UnnamedTagLabel
		}
		return tag.Name
	})
	return lo.Uniq(names)
}
