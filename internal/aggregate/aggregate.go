// Package aggregate summarizes collections of time entries.
package aggregate

import (
	"time"

	"timeclock/internal/domain"
	"timeclock/internal/duration"
)

// Current returns the first open entry in entries, or nil.
// Entries are expected newest first, so this is the running session.
func Current(entries []domain.TimeEntry) *domain.TimeEntry {
	for i := range entries {
		if entries[i].IsOpen() {
			return &entries[i]
		}
	}
	return nil
}

// DailyTotal sums hours of entries dated day. Open entries count live up to now.
func DailyTotal(entries []domain.TimeEntry, day string, now time.Time) float64 {
	var total float64
	for i := range entries {
		if entries[i].Date != day {
			continue
		}
		total += duration.TotalHours(&entries[i], now)
	}
	return total
}

// StoredTotal sums the recorded totals of entries; open entries contribute nothing.
func StoredTotal(entries []domain.TimeEntry) float64 {
	var total float64
	for i := range entries {
		total += entries[i].StoredHours()
	}
	return total
}

// PeriodStats is the summary shown above a timesheet.
type PeriodStats struct {
	TotalHours        float64 `json:"total_hours"`
	WorkDays          int     `json:"work_days"`
	AvgHoursPerDay    float64 `json:"avg_hours_per_day"`
	CompletedSessions int     `json:"completed_sessions"`
}

// Period derives PeriodStats from entries and their precomputed totalHours.
// WorkDays counts entries with a positive recorded total.
func Period(entries []domain.TimeEntry, totalHours float64) PeriodStats {
	s := PeriodStats{TotalHours: totalHours}
	for i := range entries {
		if entries[i].StoredHours() > 0 {
			s.WorkDays++
		}
		if entries[i].Status == domain.StatusClosed {
			s.CompletedSessions++
		}
	}
	if s.WorkDays > 0 {
		s.AvgHoursPerDay = totalHours / float64(s.WorkDays)
	}
	return s
}

// UserSummary is the cross-user headline for the admin view.
type UserSummary struct {
	TotalUsers        int     `json:"total_users"`
	ActiveUsers       int     `json:"active_users"`
	TotalHours        float64 `json:"total_hours"`
	Sessions          int     `json:"sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	CurrentlyActive   int     `json:"currently_active"`
}

// Summarize builds a UserSummary. Only clocked_in entries count as currently active.
func Summarize(entries []domain.TimeEntry, users []domain.User) UserSummary {
	owners := make(map[string]struct{})
	s := UserSummary{TotalUsers: len(users), Sessions: len(entries)}
	for i := range entries {
		e := &entries[i]
		owners[e.Owner] = struct{}{}
		s.TotalHours += e.StoredHours()
		switch e.Status {
		case domain.StatusClosed:
			s.CompletedSessions++
		case domain.StatusWorking:
			s.CurrentlyActive++
		}
	}
	s.ActiveUsers = len(owners)
	return s
}
