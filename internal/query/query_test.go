package query

import (
	"testing"
	"time"

	"timeclock/internal/domain"
)

// Wednesday 6 August 2025.
var now = time.Date(2025, 8, 6, 15, 30, 0, 0, time.UTC)

func entry(id, owner string, clockIn time.Time, status domain.Status) domain.TimeEntry {
	return domain.TimeEntry{ID: id, Owner: owner, Date: domain.DateOf(clockIn), ClockIn: clockIn, Status: status}
}

func ids(entries []domain.TimeEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRangeForWeek(t *testing.T) {
	r := RangeFor(PeriodWeek, now)
	wantStart := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 8, 10, 23, 59, 59, 999999999, time.UTC)
	if !r.Bounded || !r.Start.Equal(wantStart) || !r.End.Equal(wantEnd) {
		t.Fatalf("week range = %v .. %v", r.Start, r.End)
	}
	sunday := time.Date(2025, 8, 10, 18, 0, 0, 0, time.UTC)
	if got := RangeFor(PeriodWeek, sunday); !got.Start.Equal(wantStart) {
		t.Fatalf("sunday belongs to the week starting %v, got %v", wantStart, got.Start)
	}
}

func TestRangeForMonthAndAll(t *testing.T) {
	r := RangeFor(PeriodMonth, now)
	if !r.Start.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) || r.End.Day() != 31 || r.End.Hour() != 23 {
		t.Fatalf("month range = %v .. %v", r.Start, r.End)
	}
	all := RangeFor(PeriodAll, now)
	if all.Bounded || !all.Contains(time.Time{}) {
		t.Fatal("all must be unbounded")
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("", PeriodMonth); err != nil || p != PeriodMonth {
		t.Fatalf("default: %v %v", p, err)
	}
	if _, err := ParsePeriod("year", PeriodMonth); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelfScopeWeekOnWednesday(t *testing.T) {
	entries := []domain.TimeEntry{
		entry("sun-before", "me", time.Date(2025, 8, 3, 23, 59, 59, 0, time.UTC), domain.StatusClosed),
		entry("mon", "me", time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC), domain.StatusClosed),
		entry("wed", "me", time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC), domain.StatusWorking),
		entry("sun", "me", time.Date(2025, 8, 10, 23, 59, 59, 0, time.UTC), domain.StatusClosed),
		entry("mon-after", "me", time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC), domain.StatusClosed),
		entry("other", "you", time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC), domain.StatusClosed),
	}
	got := Filter{Scope: Self("me"), Period: PeriodWeek}.Apply(entries, nil, now)
	if want := []string{"sun", "wed", "mon"}; !equal(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
}

func TestSelfScopeStatusAndOrder(t *testing.T) {
	entries := []domain.TimeEntry{
		entry("a", "me", time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), domain.StatusClosed),
		entry("b", "me", time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC), domain.StatusClosed),
		entry("c", "me", time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC), domain.StatusWorking),
	}
	f := Filter{Scope: Self("me"), Period: PeriodAll, Status: domain.StatusClosed, Order: OldestFirst}
	if got := ids(f.Apply(entries, nil, now)); !equal(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}
}

func TestAllScopeFilters(t *testing.T) {
	users := []domain.User{
		{Email: "amina@example.com", FullName: "Amina Yusuf"},
		{Email: "omar@example.com", FullName: "Omar Said"},
	}
	entries := []domain.TimeEntry{
		entry("1", "amina@example.com", time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC), domain.StatusClosed),
		entry("2", "omar@example.com", time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC), domain.StatusWorking),
		entry("3", "omar@example.com", time.Date(2025, 7, 30, 9, 0, 0, 0, time.UTC), domain.StatusClosed),
		entry("4", "ghost@example.com", time.Date(2025, 8, 6, 8, 0, 0, 0, time.UTC), domain.StatusClosed),
	}

	cases := []struct {
		name string
		f    Filter
		want []string
	}{
		{"week", Filter{Scope: AllUsers(), Period: PeriodWeek}, []string{"2", "4", "1"}},
		{"month", Filter{Scope: AllUsers(), Period: PeriodMonth}, []string{"2", "4", "1"}},
		{"all", Filter{Scope: AllUsers(), Period: PeriodAll}, []string{"2", "4", "1", "3"}},
		{"search by name", Filter{Scope: AllUsers(), Period: PeriodAll, Search: "SAID"}, []string{"2", "3"}},
		{"search by email", Filter{Scope: AllUsers(), Period: PeriodAll, Search: "ghost"}, []string{"4"}},
		{"user", Filter{Scope: AllUsers(), Period: PeriodAll, User: "amina@example.com"}, []string{"1"}},
		{"status", Filter{Scope: AllUsers(), Period: PeriodWeek, Status: domain.StatusWorking}, []string{"2"}},
		{"composed", Filter{Scope: AllUsers(), Period: PeriodWeek, Search: "omar", Status: domain.StatusClosed}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(tc.f.Apply(entries, users, now)); !equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAllScopeUsesDateField(t *testing.T) {
	// Clocked in late Sunday in UTC but booked on Monday.
	e := entry("x", "a", time.Date(2025, 8, 3, 23, 0, 0, 0, time.UTC), domain.StatusClosed)
	e.Date = "2025-08-04"
	bad := entry("bad", "a", time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC), domain.StatusClosed)
	bad.Date = "05/08/2025"
	got := Filter{Scope: AllUsers(), Period: PeriodWeek}.Apply([]domain.TimeEntry{e, bad}, nil, now)
	if !equal(ids(got), []string{"x"}) {
		t.Fatalf("got %v", ids(got))
	}
}

func TestStoreFilter(t *testing.T) {
	self := Filter{Scope: Self("me"), Period: PeriodWeek}.StoreFilter(now)
	if self.Owner != "me" || self.ClockInFrom.IsZero() || self.DateFrom != "" {
		t.Fatalf("self store filter %+v", self)
	}
	admin := Filter{Scope: AllUsers(), Period: PeriodMonth, User: "u"}.StoreFilter(now)
	if admin.Owner != "u" || admin.DateFrom != "2025-08-01" || admin.DateTo != "2025-08-31" {
		t.Fatalf("admin store filter %+v", admin)
	}
	if all := (Filter{Scope: AllUsers(), Period: PeriodAll}).StoreFilter(now); all.DateFrom != "" || !all.ClockInTo.IsZero() {
		t.Fatalf("unbounded store filter %+v", all)
	}
}
