package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timeclock/internal/aggregate"
	"timeclock/internal/domain"
	"timeclock/internal/duration"
	"timeclock/internal/ports"
	"timeclock/internal/session"
)

// ClockUseCase runs session transitions against an EntryStore.
//
// Transitions are persisted with a compare-and-swap on the entry version, so
// two concurrent clock-outs of the same session cannot both succeed.
type ClockUseCase struct {
	Log      *slog.Logger
	Entries  ports.EntryStore
	Location *time.Location
}

func (uc *ClockUseCase) ready() error {
	if uc.Entries == nil || uc.Log == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	return nil
}

// ClockIn opens a session for req.Owner at now.
func (uc *ClockUseCase) ClockIn(ctx context.Context, req session.ClockIn, now time.Time) (domain.TimeEntry, error) {
	if err := uc.ready(); err != nil {
		return domain.TimeEntry{}, err
	}
	entry, err := session.Start(req, inLocation(now, uc.Location))
	if err != nil {
		return domain.TimeEntry{}, err
	}
	open, err := uc.Entries.List(ctx, ports.EntryFilter{
		Owner:    entry.Owner,
		OpenOnly: true,
		DateFrom: entry.Date,
		DateTo:   entry.Date,
	})
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("clock in: %w", err)
	}
	if len(open) > 0 {
		return domain.TimeEntry{}, domain.ErrAlreadyOpen
	}
	created, err := uc.Entries.Create(ctx, entry)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("clock in: %w", err)
	}
	uc.Log.Info("clocked in",
		slog.String("owner", created.Owner),
		slog.String("entry", created.ID),
		slog.String("location", string(created.Location)),
	)
	return created, nil
}

// ClockOut closes the current session of owner.
func (uc *ClockUseCase) ClockOut(ctx context.Context, owner, notes string, now time.Time) (domain.TimeEntry, error) {
	entry, err := uc.transition(ctx, owner, func(e *domain.TimeEntry) error {
		return session.ClockOut(e, notes, inLocation(now, uc.Location))
	})
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("clock out: %w", err)
	}
	uc.Log.Info("clocked out",
		slog.String("owner", owner),
		slog.String("entry", entry.ID),
		slog.Float64("hours", entry.StoredHours()),
		slog.Int("break_minutes", entry.BreakMinutes),
	)
	return entry, nil
}

// ToggleBreak starts or ends a break in the current session of owner.
func (uc *ClockUseCase) ToggleBreak(ctx context.Context, owner string, now time.Time) (domain.TimeEntry, error) {
	entry, err := uc.transition(ctx, owner, func(e *domain.TimeEntry) error {
		return session.ToggleBreak(e, inLocation(now, uc.Location))
	})
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("toggle break: %w", err)
	}
	uc.Log.Info("break toggled",
		slog.String("owner", owner),
		slog.String("entry", entry.ID),
		slog.String("status", string(entry.Status)),
	)
	return entry, nil
}

func (uc *ClockUseCase) transition(ctx context.Context, owner string, apply func(*domain.TimeEntry) error) (domain.TimeEntry, error) {
	if err := uc.ready(); err != nil {
		return domain.TimeEntry{}, err
	}
	cur, err := uc.Entries.Current(ctx, owner)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	version := cur.Version
	if err := apply(&cur); err != nil {
		return domain.TimeEntry{}, err
	}
	return uc.Entries.Update(ctx, cur, version)
}

// Today is the dashboard of one user for the current day.
type Today struct {
	Date    string
	Entries []domain.TimeEntry
	Current *domain.TimeEntry
	// TotalHours includes the running session up to now.
	TotalHours     float64
	SessionMinutes int
}

// Today loads the entries owner clocked in today.
func (uc *ClockUseCase) Today(ctx context.Context, owner string, now time.Time) (Today, error) {
	if err := uc.ready(); err != nil {
		return Today{}, err
	}
	now = inLocation(now, uc.Location)
	day := domain.DateOf(now)
	entries, err := uc.Entries.List(ctx, ports.EntryFilter{Owner: owner, DateFrom: day, DateTo: day})
	if err != nil {
		return Today{}, fmt.Errorf("load today: %w", err)
	}
	t := Today{
		Date:       day,
		Entries:    entries,
		Current:    aggregate.Current(entries),
		TotalHours: aggregate.DailyTotal(entries, day, now),
	}
	t.SessionMinutes = duration.SessionMinutes(t.Current, now)
	return t, nil
}

func inLocation(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return now
	}
	return now.In(loc)
}
