// Package query selects the entries visible in the timesheet and admin views.
//
// It performs no authorization: the caller decides which Scope a requester may use.
package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"timeclock/internal/domain"
	"timeclock/internal/ports"
)

// Scope restricts entries by owner.
type Scope struct {
	// Owner is the requester for the self-service view; empty when All is set.
	Owner string
	All   bool
}

// Self is the timesheet scope of owner.
func Self(owner string) Scope { return Scope{Owner: owner} }

// AllUsers is the admin scope.
func AllUsers() Scope { return Scope{All: true} }

// Order is the sort applied to results.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// Filter combines all criteria with logical AND.
type Filter struct {
	Scope  Scope
	Period Period
	Status domain.Status
	// User and Search apply only to the all-users scope.
	User   string
	Search string
	Order  Order
}

// Window returns the date window of the filter at now.
func (f Filter) Window(now time.Time) Range { return RangeFor(f.Period, now) }

// StoreFilter translates f into the subset a store can evaluate.
// Apply must still run on the result.
func (f Filter) StoreFilter(now time.Time) ports.EntryFilter {
	out := ports.EntryFilter{Status: f.Status}
	r := f.Window(now)
	if f.Scope.All {
		out.Owner = f.User
		if r.Bounded {
			out.DateFrom = domain.DateOf(r.Start)
			out.DateTo = domain.DateOf(r.End)
		}
		return out
	}
	out.Owner = f.Scope.Owner
	if r.Bounded {
		out.ClockInFrom = r.Start
		out.ClockInTo = r.End
	}
	return out
}

// Apply returns the entries matching f at now, sorted per f.Order.
// The self scope windows on clock-in time; the all-users scope on the Date field.
func (f Filter) Apply(entries []domain.TimeEntry, users []domain.User, now time.Time) []domain.TimeEntry {
	r := f.Window(now)
	idx := domain.IndexUsers(users)
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if f.Scope.All {
			if f.User != "" && e.Owner != f.User {
				continue
			}
			if needle != "" && !matchesSearch(e.Owner, idx, needle) {
				continue
			}
			if r.Bounded && !dateWithin(&e, r) {
				continue
			}
		} else {
			if e.Owner != f.Scope.Owner {
				continue
			}
			if !r.Contains(e.ClockIn) {
				continue
			}
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, e)
	}
	Sort(out, f.Order)
	return out
}

// Sort orders entries by clock-in, breaking ties by id so output is stable.
func Sort(entries []domain.TimeEntry, order Order) {
	slices.SortStableFunc(entries, func(a, b domain.TimeEntry) int {
		c := a.ClockIn.Compare(b.ClockIn)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if order == NewestFirst {
			return -c
		}
		return c
	})
}

func matchesSearch(owner string, idx domain.UserIndex, needle string) bool {
	if strings.Contains(strings.ToLower(owner), needle) {
		return true
	}
	u, ok := idx[owner]
	return ok && strings.Contains(strings.ToLower(u.FullName), needle)
}

func dateWithin(e *domain.TimeEntry, r Range) bool {
	d, ok := e.DateIn(r.Start.Location())
	if !ok {
		return false
	}
	return r.Contains(d)
}
