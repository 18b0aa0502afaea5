package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	"timeclock/internal/domain"
)

func sample() domain.TimeEntry {
	in := time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, 8, 6, 17, 0, 0, 0, time.UTC)
	h := 7.5
	return domain.TimeEntry{
		Owner:        "amina@example.com",
		Date:         "2025-08-06",
		ClockIn:      in,
		ClockOut:     &out,
		Status:       domain.StatusClosed,
		Tasks:        []domain.TaskLabel{domain.TaskTeaching, domain.TaskAdmin},
		Location:     domain.LocationIslamicCentre,
		Notes:        `has, a comma and a "quote"`,
		BreakMinutes: 30,
		TotalHours:   &h,
	}
}

func TestTimesheetExport(t *testing.T) {
	got, err := Format([]domain.TimeEntry{sample()}, TimesheetColumns(time.UTC))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "Date,Clock In,Clock Out,Tasks,Location,Total Hours,Break Duration,Status,Notes\n" +
		`2025-08-06,2025-08-06 09:00:00,2025-08-06 17:00:00,Teaching; Admin,Australian Islamic Centre,7.5,30,clocked_out,"has, a comma and a ""quote"""`
	if got != want {
		t.Fatalf("unexpected export:\n%s\nwant:\n%s", got, want)
	}
}

func TestOpenEntryHasEmptyClockOut(t *testing.T) {
	e := sample()
	e.ClockOut, e.TotalHours, e.Status, e.Notes = nil, nil, domain.StatusWorking, ""
	got, err := Format([]domain.TimeEntry{e}, TimesheetColumns(time.UTC))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	row := strings.Split(got, "\n")[1]
	if row != "2025-08-06,2025-08-06 09:00:00,,Teaching; Admin,Australian Islamic Centre,0,30,clocked_in," {
		t.Fatalf("unexpected row %q", row)
	}
}

func TestTimestampsUseLocation(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	got, _ := Format([]domain.TimeEntry{sample()}, TimesheetColumns(loc))
	if !strings.Contains(got, "2025-08-06 19:00:00") {
		t.Fatalf("expected local clock-in, got %s", got)
	}
}

func TestAdminExport(t *testing.T) {
	known := sample()
	unknown := sample()
	unknown.Owner = "ghost@example.com"
	users := []domain.User{{Email: "amina@example.com", FullName: "Amina Yusuf"}}
	got, err := Format([]domain.TimeEntry{known, unknown}, AdminColumns(time.UTC, users))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "User Name,Email,Date,") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Amina Yusuf,amina@example.com,") || !strings.HasPrefix(lines[2], "Unknown,ghost@example.com,") {
		t.Fatalf("unexpected rows %q", lines[1:])
	}
}

func TestEmptyExport(t *testing.T) {
	if _, err := Format(nil, TimesheetColumns(time.UTC)); !errors.Is(err, domain.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestDeterministic(t *testing.T) {
	entries := []domain.TimeEntry{sample(), sample()}
	a, _ := Format(entries, TimesheetColumns(time.UTC))
	b, _ := Format(entries, TimesheetColumns(time.UTC))
	if a != b {
		t.Fatal("export is not deterministic")
	}
}

func TestQuote(t *testing.T) {
	cases := map[string]string{
		"plain":       "plain",
		"":            "",
		"a,b":         `"a,b"`,
		`say "hi"`:    `"say ""hi"""`,
		"line\nbreak": "\"line\nbreak\"",
		" leading":    " leading",
	}
	for in, want := range cases {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("timesheet", time.Date(2025, 8, 6, 23, 0, 0, 0, time.UTC)); got != "timesheet-2025-08-06.csv" {
		t.Fatalf("FileName = %q", got)
	}
}
