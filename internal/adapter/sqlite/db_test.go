package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"timeclock/internal/domain"
	"timeclock/internal/ports"
	"timeclock/internal/ports/storetest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEntryStoreContract(t *testing.T) {
	storetest.RunEntryStore(t, func(t *testing.T) ports.EntryStore {
		return NewEntryStore(openTestDB(t))
	})
}

func TestUserDirectoryContract(t *testing.T) {
	storetest.RunUserDirectory(t, NewUserDirectory(openTestDB(t)))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	in := time.Date(2025, 8, 6, 9, 0, 0, 123456789, time.UTC)
	e := domain.TimeEntry{ID: "e1", Owner: "a", Date: "2025-08-06", ClockIn: in, Status: domain.StatusWorking, Location: domain.LocationRemote}
	if _, err := NewEntryStore(db).Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, err := NewEntryStore(db).Get(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ClockIn.Equal(in) {
		t.Fatalf("ClockIn = %v, want %v", got.ClockIn, in)
	}
}

func TestMalformedTimestampDegradesToZero(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO time_entries (id, owner, entry_date, clock_in, status, location, version, created_at, updated_at)
		VALUES ('bad', 'a', '2025-08-06', 'yesterday-ish', 'clocked_in', 'Remote', 1, '', '')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := NewEntryStore(db).Get(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ClockIn.IsZero() || len(got.Tasks) != 0 {
		t.Fatalf("expected zero clock-in and no tasks, got %+v", got)
	}
}
