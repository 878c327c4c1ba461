package analytics

import (
	"time"
)

// Granularity selects the time bucket for period-grouped aggregations.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity normalizes a caller-supplied group_by value.
// Unknown values fall back to day, matching the loosest caller contract.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityWeek:
		return GranularityWeek
	case GranularityMonth:
		return GranularityMonth
	default:
		return GranularityDay
	}
}

// SaleFilter is the shared predicate set applied to every aggregation query.
// Nil fields are no-ops. The filter is pure data: validation (date ordering,
// hour/day ranges) happens at the HTTP boundary before a filter is built,
// so applying a filter never errors.
//
// DayOfWeek uses the ISO convention (0=Monday .. 6=Sunday). The persistence
// layer remaps it to the store's native day extraction.
type SaleFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	StoreID   *int64
	ChannelID *int64
	DayOfWeek *int
	HourStart *int
	HourEnd   *int
}

// IsZero reports whether no predicate is set.
func (f SaleFilter) IsZero() bool {
	return f.StartDate == nil && f.EndDate == nil && f.StoreID == nil &&
		f.ChannelID == nil && f.DayOfWeek == nil && f.HourStart == nil && f.HourEnd == nil
}

// PeriodDays returns the length of the filter window in days, or def when
// either bound is missing or the window is empty.
func (f SaleFilter) PeriodDays(def int) int {
	if f.StartDate == nil || f.EndDate == nil {
		return def
	}
	days := int(f.EndDate.Sub(*f.StartDate).Hours() / 24)
	if days <= 0 {
		return def
	}
	return days
}
