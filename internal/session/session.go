// Package session implements the lifecycle of a single time entry:
//
//	clock-in -> clocked_in <-> on_break -> clocked_out
//
// Functions mutate the entry only when the transition is allowed.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timeclock/internal/domain"
	"timeclock/internal/duration"
)

// Event is an input to the state machine.
type Event string

const (
	EventBreak    Event = "break"
	EventClockOut Event = "clock_out"
)

// ClockIn describes a new session.
type ClockIn struct {
	Owner    string
	Tasks    []string
	Location string
	Notes    string
}

// Validate checks the request and returns the parsed labels.
func (c ClockIn) Validate() ([]domain.TaskLabel, domain.Location, error) {
	if strings.TrimSpace(c.Owner) == "" {
		return nil, "", &domain.ValidationError{Field: "owner", Msg: "is required"}
	}
	if len(c.Tasks) == 0 {
		return nil, "", &domain.ValidationError{Field: "tasks", Msg: "at least one task is required"}
	}
	seen := make(map[domain.TaskLabel]bool, len(c.Tasks))
	tasks := make([]domain.TaskLabel, 0, len(c.Tasks))
	for _, raw := range c.Tasks {
		t, ok := domain.ParseTaskLabel(raw)
		if !ok {
			return nil, "", &domain.ValidationError{Field: "tasks", Msg: fmt.Sprintf("unknown task %q", raw)}
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		tasks = append(tasks, t)
	}
	if strings.TrimSpace(c.Location) == "" {
		return nil, "", &domain.ValidationError{Field: "location", Msg: "is required"}
	}
	loc, ok := domain.ParseLocation(c.Location)
	if !ok {
		return nil, "", &domain.ValidationError{Field: "location", Msg: fmt.Sprintf("unknown location %q", c.Location)}
	}
	return tasks, loc, nil
}

// Start creates an entry in the clocked_in state. now must already be in the
// tracker's timezone since it decides the entry date.
func Start(req ClockIn, now time.Time) (domain.TimeEntry, error) {
	tasks, loc, err := req.Validate()
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return domain.TimeEntry{
		ID:        uuid.New().String(),
		Owner:     strings.TrimSpace(req.Owner),
		Date:      domain.DateOf(now),
		ClockIn:   now,
		Status:    domain.StatusWorking,
		Tasks:     tasks,
		Location:  loc,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Next returns the state reached from "from" on ev.
func Next(from domain.Status, ev Event) (domain.Status, error) {
	switch from {
	case domain.StatusWorking:
		switch ev {
		case EventBreak:
			return domain.StatusOnBreak, nil
		case EventClockOut:
			return domain.StatusClosed, nil
		}
	case domain.StatusOnBreak:
		switch ev {
		case EventBreak:
			return domain.StatusWorking, nil
		case EventClockOut:
			return domain.StatusClosed, nil
		}
	case domain.StatusClosed:
		return from, domain.ErrSessionClosed
	}
	return from, &domain.ValidationError{Field: "status", Msg: fmt.Sprintf("disallowed transition %s on %s", ev, from)}
}

// ToggleBreak moves e between clocked_in and on_break. Leaving a break adds its
// whole minutes to BreakMinutes.
func ToggleBreak(e *domain.TimeEntry, now time.Time) error {
	to, err := Next(e.Status, EventBreak)
	if err != nil {
		return err
	}
	if to == domain.StatusOnBreak {
		started := now
		e.BreakStartedAt = &started
	} else {
		endBreak(e, now)
	}
	e.Status = to
	e.UpdatedAt = now
	return nil
}

// ClockOut closes e. A running break is ended first. notes replace the
// existing notes only when non-empty.
func ClockOut(e *domain.TimeEntry, notes string, now time.Time) error {
	to, err := Next(e.Status, EventClockOut)
	if err != nil {
		return err
	}
	if e.Status == domain.StatusOnBreak {
		endBreak(e, now)
	}
	out := now
	hours := float64(duration.ElapsedMinutes(e.ClockIn, now, e.BreakMinutes)) / 60
	e.ClockOut = &out
	e.TotalHours = &hours
	if notes != "" {
		e.Notes = notes
	}
	e.Status = to
	e.UpdatedAt = now
	return nil
}

func endBreak(e *domain.TimeEntry, now time.Time) {
	if e.BreakStartedAt != nil {
		e.BreakMinutes += duration.ElapsedMinutes(*e.BreakStartedAt, now, 0)
	}
	e.BreakStartedAt = nil
}
