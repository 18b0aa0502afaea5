package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"timeclock/internal/domain"
	"timeclock/internal/ports"
)

// timeLayout is fixed-width so that text comparison orders timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = `id, owner, entry_date, clock_in, clock_out, status, tasks, location, notes,
       break_minutes, break_started_at, total_hours, version, created_at, updated_at`

// EntryStore implements ports.EntryStore.
type EntryStore struct {
	db *DB
}

func NewEntryStore(db *DB) *EntryStore { return &EntryStore{db: db} }

func (s *EntryStore) Create(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	tasks, err := json.Marshal(e.TaskStrings())
	if err != nil {
		return domain.TimeEntry{}, err
	}
	e.Version = 1
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO time_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Owner, e.Date, formatTime(e.ClockIn), formatTimePtr(e.ClockOut), string(e.Status),
		string(tasks), string(e.Location), e.Notes, e.BreakMinutes, formatTimePtr(e.BreakStartedAt),
		e.TotalHours, e.Version, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return domain.TimeEntry{}, domain.ErrAlreadyOpen
		case sqlite3.ErrConstraintPrimaryKey:
			return domain.TimeEntry{}, domain.ErrConflict
		}
	}
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("sqlite: insert entry: %w", err)
	}
	return e, nil
}

func (s *EntryStore) Update(ctx context.Context, e domain.TimeEntry, expectedVersion int64) (domain.TimeEntry, error) {
	next := expectedVersion + 1
	res, err := s.db.ExecContext(ctx, `
		UPDATE time_entries SET
			clock_out = ?, status = ?, notes = ?, break_minutes = ?, break_started_at = ?,
			total_hours = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`, formatTimePtr(e.ClockOut), string(e.Status), e.Notes, e.BreakMinutes, formatTimePtr(e.BreakStartedAt),
		e.TotalHours, next, formatTime(e.UpdatedAt), e.ID, expectedVersion)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("sqlite: update entry: %w", err)
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
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM time_entries
		WHERE owner = ? AND status <> 'clocked_out'
		ORDER BY clock_in DESC, id DESC
		LIMIT 1
	`, owner)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeEntry{}, domain.ErrNoOpenEntry
	}
	return e, err
}

func (s *EntryStore) List(ctx context.Context, f ports.EntryFilter) ([]domain.TimeEntry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg ...any) {
		conds = append(conds, cond)
		args = append(args, arg...)
	}
	if f.Owner != "" {
		add("owner = ?", f.Owner)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.OpenOnly {
		add("status <> 'clocked_out'")
	}
	if f.DateFrom != "" {
		add("entry_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		add("entry_date <= ?", f.DateTo)
	}
	if !f.ClockInFrom.IsZero() {
		add("clock_in >= ?", formatTime(f.ClockInFrom))
	}
	if !f.ClockInTo.IsZero() {
		add("clock_in <= ?", formatTime(f.ClockInTo))
	}
	q := `SELECT ` + entryColumns + ` FROM time_entries`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY clock_in DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list entries: %w", err)
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (domain.TimeEntry, error) {
	var e domain.TimeEntry
	var clockIn, createdAt, updatedAt, status, tasks, location string
	var clockOut, breakStarted *string

	err := s.Scan(
		&e.ID, &e.Owner, &e.Date, &clockIn, &clockOut, &status, &tasks, &location, &e.Notes,
		&e.BreakMinutes, &breakStarted, &e.TotalHours, &e.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.TimeEntry{}, err
	}

	e.Status = domain.Status(status)
	e.Location = domain.Location(location)
	var labels []string
	if json.Unmarshal([]byte(tasks), &labels) == nil {
		for _, l := range labels {
			e.Tasks = append(e.Tasks, domain.TaskLabel(l))
		}
	}
	// Unparseable timestamps are left zero; duration math treats them as 0.
	e.ClockIn = parseTime(clockIn)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	if clockOut != nil {
		t := parseTime(*clockOut)
		e.ClockOut = &t
	}
	if breakStarted != nil {
		t := parseTime(*breakStarted)
		e.BreakStartedAt = &t
	}
	return e, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return time.Time{}
		}
	}
	return t
}
