package ports

import (
	"context"
	"time"

	"timeclock/internal/domain"
)

// EntryFilter narrows a List call. Zero-valued fields do not filter.
// Results are always ordered by clock-in time, newest first.
type EntryFilter struct {
	Owner  string
	Status domain.Status
	// OpenOnly keeps clocked_in and on_break entries.
	OpenOnly bool
	// DateFrom and DateTo bound the Date field (yyyy-MM-dd, inclusive).
	DateFrom string
	DateTo   string
	// ClockInFrom and ClockInTo bound the clock-in timestamp (inclusive).
	ClockInFrom time.Time
	ClockInTo   time.Time
}

// EntryStore persists time entries.
//
// Implementations must reject a second open entry for the same owner and
// date with domain.ErrAlreadyOpen, and must treat Update as a compare-and-swap
// on Version: a stale expectedVersion yields domain.ErrConflict. On success
// Update stores entry with Version = expectedVersion+1.
type EntryStore interface {
	Create(ctx context.Context, entry domain.TimeEntry) (domain.TimeEntry, error)
	Update(ctx context.Context, entry domain.TimeEntry, expectedVersion int64) (domain.TimeEntry, error)
	Get(ctx context.Context, id string) (domain.TimeEntry, error)
	// Current returns the most recent open entry of owner or domain.ErrNoOpenEntry.
	Current(ctx context.Context, owner string) (domain.TimeEntry, error)
	List(ctx context.Context, filter EntryFilter) ([]domain.TimeEntry, error)
}

// UserDirectory resolves users. Get returns domain.ErrNotFound for unknown emails.
type UserDirectory interface {
	Get(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Upsert(ctx context.Context, user domain.User) error
}
