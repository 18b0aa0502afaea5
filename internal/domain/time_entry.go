package domain

import "time"

// DateLayout is the layout of TimeEntry.Date (calendar day of clock-in).
const DateLayout = "2006-01-02"

// Status is the lifecycle state of a time entry.
type Status string

const (
	StatusWorking Status = "clocked_in"
	StatusOnBreak Status = "on_break"
	StatusClosed  Status = "clocked_out"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWorking, StatusOnBreak, StatusClosed:
		return true
	}
	return false
}

// Open reports whether an entry in this status is still in progress.
func (s Status) Open() bool { return s == StatusWorking || s == StatusOnBreak }

// ParseStatus accepts the stored values plus the short names working, break and closed.
func ParseStatus(v string) (Status, error) {
	switch v {
	case string(StatusWorking), "working", "active":
		return StatusWorking, nil
	case string(StatusOnBreak), "break", "onBreak":
		return StatusOnBreak, nil
	case string(StatusClosed), "closed", "completed":
		return StatusClosed, nil
	}
	return "", &ValidationError{Field: "status", Msg: "unknown status " + v}
}

// TimeEntry is one work session from clock-in to clock-out.
type TimeEntry struct {
	ID           string
	Owner        string // user email
	Date         string // yyyy-MM-dd of clock-in in the tracker's timezone
	ClockIn      time.Time
	ClockOut     *time.Time
	Status       Status
	Tasks        []TaskLabel
	Location     Location
	Notes        string
	BreakMinutes int
	// BreakStartedAt is set while the entry is on break.
	BreakStartedAt *time.Time
	// TotalHours is set once the entry is closed.
	TotalHours *float64
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOpen reports whether the entry has not been clocked out yet.
func (e *TimeEntry) IsOpen() bool { return e.Status.Open() }

// StoredHours returns TotalHours or 0 when it is not set.
func (e *TimeEntry) StoredHours() float64 {
	if e.TotalHours == nil {
		return 0
	}
	return *e.TotalHours
}

// TaskStrings returns the task labels as plain strings.
func (e *TimeEntry) TaskStrings() []string {
	out := make([]string, 0, len(e.Tasks))
	for _, t := range e.Tasks {
		out = append(out, string(t))
	}
	return out
}

// DateIn parses Date as a midnight in loc. ok is false when Date is malformed.
func (e *TimeEntry) DateIn(loc *time.Location) (time.Time, bool) {
	d, err := time.ParseInLocation(DateLayout, e.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DateOf returns the entry date string for t in t's location.
func DateOf(t time.Time) string { return t.Format(DateLayout) }
