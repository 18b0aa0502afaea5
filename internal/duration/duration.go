// Package duration computes worked and break time for time entries.
//
// Every function takes "now" from the caller; nothing here reads the wall clock.
// Missing or inconsistent timestamps yield zero rather than an error.
package duration

import (
	"fmt"
	"math"
	"time"

	"timeclock/internal/domain"
)

// ElapsedMinutes returns whole minutes between clockIn and now, minus breakMinutes.
// The result is never negative.
func ElapsedMinutes(clockIn, now time.Time, breakMinutes int) int {
	if clockIn.IsZero() || now.IsZero() {
		return 0
	}
	m := int(math.Floor(now.Sub(clockIn).Minutes())) - breakMinutes
	if m < 0 {
		return 0
	}
	return m
}

// BreakMinutes returns the accumulated break minutes of e, including a break
// that is still running at now.
func BreakMinutes(e *domain.TimeEntry, now time.Time) int {
	total := e.BreakMinutes
	if total < 0 {
		total = 0
	}
	if e.Status == domain.StatusOnBreak && e.BreakStartedAt != nil {
		total += ElapsedMinutes(*e.BreakStartedAt, now, 0)
	}
	return total
}

// SessionMinutes returns worked minutes for e at now. Closed entries use their
// stored clock-out time.
func SessionMinutes(e *domain.TimeEntry, now time.Time) int {
	if e == nil {
		return 0
	}
	if e.Status == domain.StatusClosed {
		if e.ClockOut == nil {
			return 0
		}
		return ElapsedMinutes(e.ClockIn, *e.ClockOut, e.BreakMinutes)
	}
	return ElapsedMinutes(e.ClockIn, now, BreakMinutes(e, now))
}

// TotalHours returns the stored total of a closed entry, or the live worked
// hours of an open one.
func TotalHours(e *domain.TimeEntry, now time.Time) float64 {
	if e == nil {
		return 0
	}
	if e.Status == domain.StatusClosed {
		h := e.StoredHours()
		if math.IsNaN(h) || h < 0 {
			return 0
		}
		return h
	}
	return float64(ElapsedMinutes(e.ClockIn, now, BreakMinutes(e, now))) / 60
}

// FormatMinutes renders minutes as "{H}h {M}m". NaN, infinite and negative
// inputs render as "0h 0m".
func FormatMinutes(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		return "0h 0m"
	}
	m := int64(math.Floor(minutes))
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

// FormatHours renders fractional hours as "{H}h {M}m" with minutes rounded.
func FormatHours(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return "0h 0m"
	}
	return FormatMinutes(math.Round(hours * 60))
}
