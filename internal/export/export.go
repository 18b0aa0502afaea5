// Package export renders entries as comma-separated text.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"timeclock/internal/domain"
)

// TimestampLayout is the layout of clock-in and clock-out cells.
const TimestampLayout = "2006-01-02 15:04:05"

// Column is one field of the export.
type Column struct {
	Header string
	Value  func(e *domain.TimeEntry) string
}

// TimesheetColumns is the self-service column set. Timestamps render in loc.
func TimesheetColumns(loc *time.Location) []Column {
	return []Column{
		{"Date", func(e *domain.TimeEntry) string { return e.Date }},
		{"Clock In", func(e *domain.TimeEntry) string { return timestamp(&e.ClockIn, loc) }},
		{"Clock Out", func(e *domain.TimeEntry) string { return timestamp(e.ClockOut, loc) }},
		{"Tasks", func(e *domain.TimeEntry) string { return strings.Join(e.TaskStrings(), "; ") }},
		{"Location", func(e *domain.TimeEntry) string { return string(e.Location) }},
		{"Total Hours", func(e *domain.TimeEntry) string { return strconv.FormatFloat(e.StoredHours(), 'f', -1, 64) }},
		{"Break Duration", func(e *domain.TimeEntry) string { return strconv.Itoa(e.BreakMinutes) }},
		{"Status", func(e *domain.TimeEntry) string { return string(e.Status) }},
		{"Notes", func(e *domain.TimeEntry) string { return e.Notes }},
	}
}

// AdminColumns prefixes the timesheet columns with the owner's name and email.
// Owners missing from users are named "Unknown".
func AdminColumns(loc *time.Location, users []domain.User) []Column {
	idx := domain.IndexUsers(users)
	cols := []Column{
		{"User Name", func(e *domain.TimeEntry) string {
			if u, ok := idx[e.Owner]; ok && u.FullName != "" {
				return u.FullName
			}
			return "Unknown"
		}},
		{"Email", func(e *domain.TimeEntry) string { return e.Owner }},
	}
	return append(cols, TimesheetColumns(loc)...)
}

// Format renders entries in order. It returns domain.ErrNothingToExport
// instead of a header-only document.
func Format(entries []domain.TimeEntry, cols []Column) (string, error) {
	var b strings.Builder
	if err := Write(&b, entries, cols); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write streams the rendering of Format to w. Rows are separated by "\n"
// with no trailing newline.
func Write(w io.Writer, entries []domain.TimeEntry, cols []Column) error {
	if len(entries) == 0 {
		return domain.ErrNothingToExport
	}
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = Quote(c.Header)
	}
	if _, err := io.WriteString(w, strings.Join(fields, ",")); err != nil {
		return err
	}
	for i := range entries {
		for j, c := range cols {
			fields[j] = Quote(c.Value(&entries[i]))
		}
		if _, err := io.WriteString(w, "\n"+strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return nil
}

// Quote wraps v in double quotes when it contains a comma, a double quote or
// a line break, doubling inner quotes. Other values pass through unchanged.
func Quote(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// FileName returns "<prefix>-yyyy-MM-dd.csv" for now.
func FileName(prefix string, now time.Time) string {
	return prefix + "-" + now.Format(domain.DateLayout) + ".csv"
}

func timestamp(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if loc != nil {
		return t.In(loc).Format(TimestampLayout)
	}
	return t.Format(TimestampLayout)
}
