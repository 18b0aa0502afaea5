package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timeclock/internal/domain"
	"timeclock/internal/ports"
)

const entryColumns = `id, owner, entry_date, clock_in, clock_out, status, tasks, location, notes,
       break_minutes, break_started_at, total_hours, version, created_at, updated_at`

// EntryStore implements ports.EntryStore on the time_entries table.
type EntryStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewEntryStore(db *sql.DB, log *slog.Logger) *EntryStore {
	return &EntryStore{db: db, log: log}
}

func (s *EntryStore) Create(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	tasks, err := json.Marshal(e.TaskStrings())
	if err != nil {
		return domain.TimeEntry{}, err
	}
	e.Version = 1
	const q = `
INSERT INTO time_entries
  (id, owner, entry_date, clock_in, clock_out, status, tasks, location, notes,
   break_minutes, break_started_at, total_hours, version, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		e.ID, e.Owner, e.Date, e.ClockIn.UTC(), utcPtr(e.ClockOut), string(e.Status), string(tasks),
		string(e.Location), e.Notes, e.BreakMinutes, utcPtr(e.BreakStartedAt), floatPtr(e.TotalHours),
		e.Version, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	if isDuplicate(err, "uq_time_entries_open") {
		return domain.TimeEntry{}, domain.ErrAlreadyOpen
	}
	if isDuplicate(err, "") {
		return domain.TimeEntry{}, domain.ErrConflict
	}
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("mysql: insert entry: %w", err)
	}
	s.log.Debug("mysql entry created", slog.String("id", e.ID))
	return e, nil
}

func (s *EntryStore) Update(ctx context.Context, e domain.TimeEntry, expectedVersion int64) (domain.TimeEntry, error) {
	const q = `
UPDATE time_entries SET
  clock_out = ?, status = ?, notes = ?, break_minutes = ?, break_started_at = ?,
  total_hours = ?, version = ?, updated_at = ?
WHERE id = ? AND version = ?`
	next := expectedVersion + 1
	res, err := s.db.ExecContext(ctx, q,
		utcPtr(e.ClockOut), string(e.Status), e.Notes, e.BreakMinutes, utcPtr(e.BreakStartedAt),
		floatPtr(e.TotalHours), next, e.UpdatedAt.UTC(),
		e.ID, expectedVersion,
	)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("mysql: update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if n == 0 {
		if _, err := s.Get(ctx, e.ID); err != nil {
			return domain.TimeEntry{}, err
		}
		return domain.TimeEntry{}, domain.ErrConflict
	}
	e.Version = next
	return e, nil
}

func (s *EntryStore) Get(ctx context.Context, id string) (domain.TimeEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	return e, err
}

func (s *EntryStore) Current(ctx context.Context, owner string) (domain.TimeEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries
WHERE owner = ? AND status <> 'clocked_out'
ORDER BY clock_in DESC, id DESC LIMIT 1`, owner)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeEntry{}, domain.ErrNoOpenEntry
	}
	return e, err
}

func (s *EntryStore) List(ctx context.Context, f ports.EntryFilter) ([]domain.TimeEntry, error) {
	where, args := whereClause(f)
	q := `SELECT ` + entryColumns + ` FROM time_entries` + where + ` ORDER BY clock_in DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: list entries: %w", err)
	}
	defer rows.Close()
	var out []domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func whereClause(f ports.EntryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Owner != "" {
		conds = append(conds, "owner = ?")
		args = append(args, f.Owner)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.OpenOnly {
		conds = append(conds, "status <> 'clocked_out'")
	}
	if f.DateFrom != "" {
		conds = append(conds, "entry_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		conds = append(conds, "entry_date <= ?")
		args = append(args, f.DateTo)
	}
	if !f.ClockInFrom.IsZero() {
		conds = append(conds, "clock_in >= ?")
		args = append(args, f.ClockInFrom.UTC())
	}
	if !f.ClockInTo.IsZero() {
		conds = append(conds, "clock_in <= ?")
		args = append(args, f.ClockInTo.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (domain.TimeEntry, error) {
	var (
		e            domain.TimeEntry
		status       string
		tasks        string
		location     string
		clockOut     sql.NullTime
		breakStarted sql.NullTime
		total        sql.NullFloat64
	)
	err := s.Scan(
		&e.ID, &e.Owner, &e.Date, &e.ClockIn, &clockOut, &status, &tasks, &location, &e.Notes,
		&e.BreakMinutes, &breakStarted, &total, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	e.Status = domain.Status(status)
	e.Location = domain.Location(location)
	var labels []string
	// Malformed task lists degrade to no tasks.
	if json.Unmarshal([]byte(tasks), &labels) == nil {
		for _, l := range labels {
			e.Tasks = append(e.Tasks, domain.TaskLabel(l))
		}
	}
	if clockOut.Valid {
		t := clockOut.Time
		e.ClockOut = &t
	}
	if breakStarted.Valid {
		t := breakStarted.Time
		e.BreakStartedAt = &t
	}
	if total.Valid {
		h := total.Float64
		e.TotalHours = &h
	}
	return e, nil
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func floatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
