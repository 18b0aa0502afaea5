package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"timeclock/internal/aggregate"
	"timeclock/internal/domain"
	"timeclock/internal/export"
	"timeclock/internal/ports"
	"timeclock/internal/query"
)

// ReportUseCase serves the timesheet and admin views.
// Every call reads the store afresh and derives its figures from that one read.
type ReportUseCase struct {
	Log      *slog.Logger
	Entries  ports.EntryStore
	Users    ports.UserDirectory
	Location *time.Location
}

// Timesheet is the self-service view of one period.
type Timesheet struct {
	Period  query.Period
	Range   query.Range
	Entries []domain.TimeEntry
	Stats   aggregate.PeriodStats
}

// AdminReport is the cross-user view.
type AdminReport struct {
	Entries []domain.TimeEntry
	Users   []domain.User
	Summary aggregate.UserSummary
}

func (uc *ReportUseCase) ready() error {
	if uc.Entries == nil || uc.Users == nil || uc.Log == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	return nil
}

func (uc *ReportUseCase) load(ctx context.Context, f query.Filter, now time.Time, withUsers bool) ([]domain.TimeEntry, []domain.User, error) {
	if err := uc.ready(); err != nil {
		return nil, nil, err
	}
	entries, err := uc.Entries.List(ctx, f.StoreFilter(now))
	if err != nil {
		return nil, nil, fmt.Errorf("list entries: %w", err)
	}
	var users []domain.User
	if withUsers {
		if users, err = uc.Users.List(ctx); err != nil {
			return nil, nil, fmt.Errorf("list users: %w", err)
		}
	}
	out := f.Apply(entries, users, now)
	uc.Log.Debug("entries selected",
		slog.Bool("all_users", f.Scope.All),
		slog.String("period", string(f.Period)),
		slog.Int("fetched", len(entries)),
		slog.Int("selected", len(out)),
	)
	return out, users, nil
}

// Timesheet returns owner's entries for period.
func (uc *ReportUseCase) Timesheet(ctx context.Context, owner string, period query.Period, now time.Time) (Timesheet, error) {
	now = inLocation(now, uc.Location)
	f := query.Filter{Scope: query.Self(owner), Period: period}
	entries, _, err := uc.load(ctx, f, now, false)
	if err != nil {
		return Timesheet{}, err
	}
	return Timesheet{
		Period:  period,
		Range:   f.Window(now),
		Entries: entries,
		Stats:   aggregate.Period(entries, aggregate.StoredTotal(entries)),
	}, nil
}

// TimesheetCSV exports the timesheet of owner.
func (uc *ReportUseCase) TimesheetCSV(ctx context.Context, owner string, period query.Period, now time.Time) (string, error) {
	ts, err := uc.Timesheet(ctx, owner, period, now)
	if err != nil {
		return "", err
	}
	return export.Format(ts.Entries, export.TimesheetColumns(uc.Location))
}

// Admin returns the entries of all users matching f. f.Scope is forced to all users.
func (uc *ReportUseCase) Admin(ctx context.Context, f query.Filter, now time.Time) (AdminReport, error) {
	f.Scope = query.AllUsers()
	entries, users, err := uc.load(ctx, f, inLocation(now, uc.Location), true)
	if err != nil {
		return AdminReport{}, err
	}
	return AdminReport{
		Entries: entries,
		Users:   users,
		Summary: aggregate.Summarize(entries, users),
	}, nil
}

// AdminCSV exports the admin view.
func (uc *ReportUseCase) AdminCSV(ctx context.Context, f query.Filter, now time.Time) (string, error) {
	r, err := uc.Admin(ctx, f, now)
	if err != nil {
		return "", err
	}
	return export.Format(r.Entries, export.AdminColumns(uc.Location, r.Users))
}

// Calendar lays out the entries selected by f over the month containing month.
// The month itself is the window, so f.Period is ignored.
func (uc *ReportUseCase) Calendar(ctx context.Context, f query.Filter, month, now time.Time) (aggregate.MonthCalendar, error) {
	now = inLocation(now, uc.Location)
	f.Period = query.PeriodAll
	r, err := uc.Admin(ctx, f, now)
	if err != nil {
		return aggregate.MonthCalendar{}, err
	}
	return aggregate.Calendar(r.Entries, r.Users, inLocation(month, uc.Location), now), nil
}
