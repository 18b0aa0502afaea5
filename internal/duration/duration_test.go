package duration

import (
	"math"
	"testing"
	"time"

	"timeclock/internal/domain"
)

var base = time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC)

func TestElapsedMinutes(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		now  time.Time
		brk  int
		want int
	}{
		{"plain", base, base.Add(90 * time.Minute), 0, 90},
		{"partial minute floors", base, base.Add(90*time.Minute + 59*time.Second), 0, 90},
		{"break subtracted", base, base.Add(8 * time.Hour), 30, 450},
		{"break exceeds elapsed", base, base.Add(10 * time.Minute), 30, 0},
		{"clock drift", base, base.Add(-5 * time.Minute), 0, 0},
		{"zero clock in", time.Time{}, base, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ElapsedMinutes(tc.in, tc.now, tc.brk); got != tc.want {
				t.Fatalf("ElapsedMinutes = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestElapsedMinutesNeverNegative(t *testing.T) {
	for brk := 0; brk < 600; brk += 7 {
		for d := 0; d < 600; d += 13 {
			if got := ElapsedMinutes(base, base.Add(time.Duration(d)*time.Minute), brk); got < 0 {
				t.Fatalf("negative result %d for d=%d brk=%d", got, d, brk)
			}
		}
	}
}

func TestTotalHoursClosedUsesStoredValue(t *testing.T) {
	out := base.Add(8 * time.Hour)
	h := 7.5
	e := &domain.TimeEntry{ClockIn: base, ClockOut: &out, BreakMinutes: 30, Status: domain.StatusClosed, TotalHours: &h}
	if got := TotalHours(e, base.Add(48*time.Hour)); got != 7.5 {
		t.Fatalf("TotalHours = %v, want 7.5", got)
	}
}

func TestTotalHoursOpenIsLive(t *testing.T) {
	e := &domain.TimeEntry{ClockIn: base, Status: domain.StatusWorking, BreakMinutes: 15}
	if got := TotalHours(e, base.Add(75*time.Minute)); got != 1 {
		t.Fatalf("TotalHours = %v, want 1", got)
	}
	if got := TotalHours(e, base.Add(135*time.Minute)); got != 2 {
		t.Fatalf("TotalHours = %v, want 2", got)
	}
}

func TestTotalHoursExcludesRunningBreak(t *testing.T) {
	started := base.Add(60 * time.Minute)
	e := &domain.TimeEntry{ClockIn: base, Status: domain.StatusOnBreak, BreakStartedAt: &started}
	if got := TotalHours(e, base.Add(90*time.Minute)); got != 1 {
		t.Fatalf("TotalHours = %v, want 1", got)
	}
	if got := BreakMinutes(e, base.Add(90*time.Minute)); got != 30 {
		t.Fatalf("BreakMinutes = %d, want 30", got)
	}
}

func TestTotalHoursMissingFields(t *testing.T) {
	if got := TotalHours(nil, base); got != 0 {
		t.Fatalf("nil entry: got %v", got)
	}
	if got := TotalHours(&domain.TimeEntry{Status: domain.StatusWorking}, base); got != 0 {
		t.Fatalf("missing clock-in: got %v", got)
	}
	if got := TotalHours(&domain.TimeEntry{Status: domain.StatusClosed}, base); got != 0 {
		t.Fatalf("missing total: got %v", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[float64]string{
		0:          "0h 0m",
		-5:         "0h 0m",
		90:         "1h 30m",
		59.9:       "0h 59m",
		600:        "10h 0m",
		math.NaN(): "0h 0m",
	}
	for in, want := range cases {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{7.5, "7h 30m"},
		{0, "0h 0m"},
		{-1, "0h 0m"},
		{1.9999, "2h 0m"},
		{0.25, "0h 15m"},
	}
	for _, tc := range cases {
		if got := FormatHours(tc.in); got != tc.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
