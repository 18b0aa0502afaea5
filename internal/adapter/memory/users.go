package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"timeclock/internal/domain"
)

// Directory is a ports.UserDirectory backed by a map.
type Directory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewDirectory(users ...domain.User) *Directory {
	d := &Directory{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		d.users[u.Email] = u
	}
	return d
}

func (d *Directory) Get(ctx context.Context, email string) (domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// List returns users ordered by email.
func (d *Directory) List(ctx context.Context) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b domain.User) int { return cmp.Compare(a.Email, b.Email) })
	return out, nil
}

func (d *Directory) Upsert(ctx context.Context, u domain.User) error {
	if u.Email == "" {
		return &domain.ValidationError{Field: "email", Msg: "is required"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.Email] = u
	return nil
}
