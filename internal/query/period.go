package query

import (
	"fmt"
	"time"
)

// Period is a named date window relative to now.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod parses v; an empty string yields def.
func ParsePeriod(v string, def Period) (Period, error) {
	switch Period(v) {
	case "":
		return def, nil
	case PeriodWeek, PeriodMonth, PeriodAll:
		return Period(v), nil
	}
	return "", fmt.Errorf("unknown period %q (want week, month or all)", v)
}

// Range is an inclusive time window. An unbounded Range contains everything.
type Range struct {
	Start   time.Time
	End     time.Time
	Bounded bool
}

// RangeFor computes the window of p around now, in now's location.
// Weeks run Monday 00:00 to the last instant of Sunday.
func RangeFor(p Period, now time.Time) Range {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodWeek:
		start := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		return Range{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond), Bounded: true}
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond), Bounded: true}
	}
	return Range{}
}

// Contains reports whether t lies in r. Zero timestamps never match a bounded range.
func (r Range) Contains(t time.Time) bool {
	if !r.Bounded {
		return true
	}
	if t.IsZero() {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}
