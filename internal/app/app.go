package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"timeclock/internal/adapter/memory"
	msql "timeclock/internal/adapter/mysql"
	"timeclock/internal/adapter/sqlite"
	"timeclock/internal/config"
	"timeclock/internal/domain"
	"timeclock/internal/ports"
	"timeclock/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log      *slog.Logger
	Clock    *usecase.ClockUseCase
	Reports  *usecase.ReportUseCase
	Users    ports.UserDirectory
	Location *time.Location

	// now is replaced in tests.
	now      func() time.Time
	closers  []func() error
	lockFile *flock.Flock
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	switch cfg.Store.Driver {
	case config.StoreMySQL:
		db, err := msql.Open(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		a := NewWithStores(log, msql.NewEntryStore(db, log), msql.NewUserDirectory(db), cfg.Location())
		a.closers = append(a.closers, db.Close)
		return a, nil

	case config.StoreSQLite:
		lock, err := acquireLock(cfg.SQLite.DataDir)
		if err != nil {
			return nil, err
		}
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			lock.Unlock()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a := NewWithStores(log, sqlite.NewEntryStore(db), sqlite.NewUserDirectory(db), cfg.Location())
		a.lockFile = lock
		a.closers = append(a.closers, db.Close)
		log.Debug("sqlite store opened", slog.String("path", cfg.SQLite.Path))
		return a, nil

	case config.StoreMemory:
		return NewWithStores(log, memory.NewStore(), memory.NewDirectory(), cfg.Location()), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store.Driver)
}

// NewWithStores builds an App over already opened stores.
func NewWithStores(log *slog.Logger, entries ports.EntryStore, users ports.UserDirectory, loc *time.Location) *App {
	if loc == nil {
		loc = time.Local
	}
	return &App{
		log:      log,
		Clock:    &usecase.ClockUseCase{Log: log, Entries: entries, Location: loc},
		Reports:  &usecase.ReportUseCase{Log: log, Entries: entries, Users: users, Location: loc},
		Users:    users,
		Location: loc,
		now:      time.Now,
	}
}

// Now is the current time in the tracker's timezone.
func (a *App) Now() time.Time { return a.now().In(a.Location) }

// AddUser creates or updates a directory record.
func (a *App) AddUser(ctx context.Context, email, fullName string, role domain.Role) error {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return &domain.ValidationError{Field: "email", Msg: fmt.Sprintf("invalid address %q", email)}
	}
	switch role {
	case "":
		role = domain.RoleMember
	case domain.RoleMember, domain.RoleAdmin:
	default:
		return &domain.ValidationError{Field: "role", Msg: fmt.Sprintf("unknown role %q", role)}
	}
	u := domain.User{Email: email, FullName: strings.TrimSpace(fullName), Role: role}
	if err := a.Users.Upsert(ctx, u); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	a.log.Info("user saved", slog.String("email", u.Email), slog.String("role", string(u.Role)))
	return nil
}

// Identify resolves email through the directory. Emails without a record act as members.
func (a *App) Identify(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, &domain.ValidationError{Field: "user", Msg: "is required"}
	}
	u, err := a.Users.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{Email: email, Role: domain.RoleMember}, nil
	}
	return u, err
}

// acquireLock takes an exclusive lock on dataDir so only one process writes the database file.
func acquireLock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	lock := flock.New(filepath.Join(dataDir, "timeclock.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another timeclock process is using " + dataDir)
	}
	return lock, nil
}

// Close releases the stores and the data-dir lock.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.lockFile != nil {
		if err := a.lockFile.Unlock(); err != nil {
			errs = append(errs, err)
		}
		a.lockFile = nil
	}
	return errors.Join(errs...)
}
