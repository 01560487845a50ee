package analytics

import (
	"time"

	"github.com/wonny/tradejournal/backend/internal/contracts"
)

// ClassifyDuration maps a trade's holding period to a duration bucket.
//
// Buckets follow calendar days in the location of the timestamps, not
// elapsed 24h windows: 23:50 -> 00:10 on the next day is Short-Term.
func ClassifyDuration(t contracts.Trade) contracts.DurationBucket {
	if !t.IsClosed() || t.EntryTime == nil || t.ExitTime == nil {
		return contracts.DurationUnknown
	}

	entry := *t.EntryTime
	exit := t.ExitTime.In(entry.Location())

	if sameDay(entry, exit) {
		return contracts.DurationIntraday
	}

	days := calendarDaysBetween(entry, exit)
	switch {
	case days <= 0:
		return contracts.DurationIntraday
	case days <= 7:
		return contracts.DurationShortTerm
	case days <= 28:
		return contracts.DurationMediumTerm
	case days <= 90:
		return contracts.DurationLongTerm
	default:
		return contracts.DurationVeryLongTerm
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// calendarDaysBetween counts civil-date boundaries from a to b.
// Dates are re-anchored at UTC midnight so DST shifts cannot skew the count.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
