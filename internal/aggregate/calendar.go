package aggregate

import (
	"slices"
	"time"

	"timeclock/internal/domain"
)

// DayActivity is the total recorded on one calendar day.
type DayActivity struct {
	TotalHours float64
	// Users holds distinct owners in order of first appearance.
	Users []string
}

// ByDay groups entries by their Date field and returns one DayActivity for
// every day in [from, to], including days without entries. Entries with a
// malformed date or outside the range are skipped.
func ByDay(entries []domain.TimeEntry, from, to time.Time) map[string]DayActivity {
	out := make(map[string]DayActivity)
	for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		out[domain.DateOf(d)] = DayActivity{Users: []string{}}
	}
	for i := range entries {
		e := &entries[i]
		day, ok := out[e.Date]
		if !ok {
			continue
		}
		day.TotalHours += e.StoredHours()
		if !slices.Contains(day.Users, e.Owner) {
			day.Users = append(day.Users, e.Owner)
		}
		out[e.Date] = day
	}
	return out
}

// ActiveUser is a badge on a calendar day.
type ActiveUser struct {
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date       string       `json:"date"`
	Day        int          `json:"day"`
	TotalHours float64      `json:"total_hours"`
	Users      []ActiveUser `json:"users"`
	IsToday    bool         `json:"is_today"`
}

// MonthCalendar is a Monday-first month grid.
type MonthCalendar struct {
	Month string `json:"month"`
	// LeadingBlanks is the number of empty cells before the 1st.
	LeadingBlanks int           `json:"leading_blanks"`
	Days          []CalendarDay `json:"days"`
}

// Calendar lays out the month containing month. Day totals use recorded
// hours; users are resolved to initials through users.
func Calendar(entries []domain.TimeEntry, users []domain.User, month, now time.Time) MonthCalendar {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)
	days := ByDay(entries, first, last)
	idx := domain.IndexUsers(users)
	today := domain.DateOf(now.In(month.Location()))

	cal := MonthCalendar{
		Month:         first.Format("2006-01"),
		LeadingBlanks: (int(first.Weekday()) + 6) % 7,
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := domain.DateOf(d)
		act := days[key]
		cell := CalendarDay{
			Date:       key,
			Day:        d.Day(),
			TotalHours: act.TotalHours,
			Users:      make([]ActiveUser, 0, len(act.Users)),
			IsToday:    key == today,
		}
		for _, email := range act.Users {
			u, ok := idx[email]
			if !ok {
				u = domain.User{Email: email}
			}
			cell.Users = append(cell.Users, ActiveUser{Email: email, Initials: u.Initials()})
		}
		cal.Days = append(cal.Days, cell)
	}
	return cal
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
