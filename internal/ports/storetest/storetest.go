// Package storetest checks that an EntryStore honors the ports contract.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"timeclock/internal/domain"
	"timeclock/internal/ports"
)

var t0 = time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC)

func open(id, owner string, clockIn time.Time) domain.TimeEntry {
	return domain.TimeEntry{
		ID:        id,
		Owner:     owner,
		Date:      domain.DateOf(clockIn),
		ClockIn:   clockIn,
		Status:    domain.StatusWorking,
		Tasks:     []domain.TaskLabel{domain.TaskTeaching, domain.TaskPlanning},
		Location:  domain.LocationRemote,
		Notes:     "notes",
		CreatedAt: clockIn,
		UpdatedAt: clockIn,
	}
}

// RunEntryStore exercises newStore with the contract tests. newStore must
// return an empty store.
func RunEntryStore(t *testing.T, newStore func(t *testing.T) ports.EntryStore) {
	t.Run("CreateGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created, err := s.Create(ctx, open("e1", "a@example.com", t0))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.Version != 1 {
			t.Fatalf("Version = %d, want 1", created.Version)
		}
		got, err := s.Get(ctx, "e1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Owner != "a@example.com" || got.Date != "2025-08-06" || !got.ClockIn.Equal(t0) {
			t.Fatalf("unexpected entry %+v", got)
		}
		if len(got.Tasks) != 2 || got.Tasks[1] != domain.TaskPlanning || got.Location != domain.LocationRemote {
			t.Fatalf("labels not preserved: %v %q", got.Tasks, got.Location)
		}
		if got.ClockOut != nil || got.TotalHours != nil || got.BreakStartedAt != nil {
			t.Fatalf("optional fields must be empty: %+v", got)
		}
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Get missing err = %v", err)
		}
	})

	t.Run("SecondOpenEntrySameDayRejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if _, err := s.Create(ctx, open("e1", "a@example.com", t0)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := s.Create(ctx, open("e2", "a@example.com", t0.Add(time.Hour)))
		if !errors.Is(err, domain.ErrAlreadyOpen) {
			t.Fatalf("expected ErrAlreadyOpen, got %v", err)
		}
		if _, err := s.Create(ctx, open("e3", "b@example.com", t0)); err != nil {
			t.Fatalf("other owner must be allowed: %v", err)
		}
		if _, err := s.Create(ctx, open("e4", "a@example.com", t0.AddDate(0, 0, 1))); err != nil {
			t.Fatalf("other day must be allowed: %v", err)
		}
	})

	t.Run("UpdateIsCompareAndSwap", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		e, err := s.Create(ctx, open("e1", "a@example.com", t0))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		out := t0.Add(8 * time.Hour)
		hours := 7.5
		closed := e
		closed.Status = domain.StatusClosed
		closed.ClockOut = &out
		closed.TotalHours = &hours
		closed.BreakMinutes = 30

		updated, err := s.Update(ctx, closed, e.Version)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Version != e.Version+1 {
			t.Fatalf("Version = %d, want %d", updated.Version, e.Version+1)
		}
		if _, err := s.Update(ctx, closed, e.Version); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("stale update err = %v", err)
		}
		got, err := s.Get(ctx, "e1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != domain.StatusClosed || got.TotalHours == nil || *got.TotalHours != 7.5 || got.BreakMinutes != 30 {
			t.Fatalf("unexpected stored entry %+v", got)
		}
		if got.ClockOut == nil || !got.ClockOut.Equal(out) {
			t.Fatalf("ClockOut = %v", got.ClockOut)
		}
		// A closed entry frees the day for a new session.
		if _, err := s.Create(ctx, open("e2", "a@example.com", t0.Add(9*time.Hour))); err != nil {
			t.Fatalf("Create after close: %v", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Update(context.Background(), open("nope", "a", t0), 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CurrentIsNewestOpen", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if _, err := s.Current(ctx, "a@example.com"); !errors.Is(err, domain.ErrNoOpenEntry) {
			t.Fatalf("expected ErrNoOpenEntry, got %v", err)
		}
		if _, err := s.Create(ctx, open("old", "a@example.com", t0.AddDate(0, 0, -1))); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := s.Create(ctx, open("new", "a@example.com", t0)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		cur, err := s.Current(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if cur.ID != "new" {
			t.Fatalf("Current = %s, want new", cur.ID)
		}
	})

	t.Run("ListFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for i, owner := range []string{"a", "a", "b"} {
			e := open(string(rune('x'+i)), owner, t0.AddDate(0, 0, -i))
			if i == 1 {
				h := 1.0
				out := e.ClockIn.Add(time.Hour)
				e.Status, e.TotalHours, e.ClockOut = domain.StatusClosed, &h, &out
			}
			if _, err := s.Create(ctx, e); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}
		cases := []struct {
			name string
			f    ports.EntryFilter
			want []string
		}{
			{"all", ports.EntryFilter{}, []string{"x", "y", "z"}},
			{"owner", ports.EntryFilter{Owner: "a"}, []string{"x", "y"}},
			{"status", ports.EntryFilter{Status: domain.StatusClosed}, []string{"y"}},
			{"open", ports.EntryFilter{OpenOnly: true}, []string{"x", "z"}},
			{"dates", ports.EntryFilter{DateFrom: "2025-08-05", DateTo: "2025-08-05"}, []string{"y"}},
			{"clock-in", ports.EntryFilter{ClockInFrom: t0.Add(-time.Hour)}, []string{"x"}},
			{"clock-in upper", ports.EntryFilter{ClockInTo: t0.Add(-time.Hour)}, []string{"y", "z"}},
		}
		for _, tc := range cases {
			got, err := s.List(ctx, tc.f)
			if err != nil {
				t.Fatalf("%s: List: %v", tc.name, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("%s: got %d entries, want %v", tc.name, len(got), tc.want)
			}
			for i := range got {
				if got[i].ID != tc.want[i] {
					t.Fatalf("%s: position %d = %s, want %s", tc.name, i, got[i].ID, tc.want[i])
				}
			}
		}
	})
}

// RunUserDirectory exercises a UserDirectory.
func RunUserDirectory(t *testing.T, dir ports.UserDirectory) {
	ctx := context.Background()
	if _, err := dir.Get(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	users := []domain.User{
		{Email: "b@example.com", FullName: "Bilal B", Role: domain.RoleMember},
		{Email: "a@example.com", FullName: "Aisha A", Role: domain.RoleAdmin},
	}
	for _, u := range users {
		if err := dir.Upsert(ctx, u); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := dir.Upsert(ctx, domain.User{Email: "b@example.com", FullName: "Bilal Bakr", Role: domain.RoleMember}); err != nil {
		t.Fatalf("Upsert existing: %v", err)
	}
	got, err := dir.Get(ctx, "b@example.com")
	if err != nil || got.FullName != "Bilal Bakr" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	list, err := dir.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Email != "a@example.com" || !list[0].IsAdmin() {
		t.Fatalf("unexpected list %+v", list)
	}
}
