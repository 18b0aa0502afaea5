package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"timeclock/internal/domain"
)

// UserDirectory implements ports.UserDirectory.
type UserDirectory struct {
	db *DB
}

func NewUserDirectory(db *DB) *UserDirectory { return &UserDirectory{db: db} }

func (d *UserDirectory) Get(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := d.db.QueryRowContext(ctx, `SELECT email, full_name, role FROM users WHERE email = ?`, email).
		Scan(&u.Email, &u.FullName, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func (d *UserDirectory) List(ctx context.Context) ([]domain.User, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT email, full_name, role FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Email, &u.FullName, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (d *UserDirectory) Upsert(ctx context.Context, u domain.User) error {
	if u.Email == "" {
		return &domain.ValidationError{Field: "email", Msg: "is required"}
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (email, full_name, role) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET full_name = excluded.full_name, role = excluded.role
	`, u.Email, u.FullName, string(u.Role))
	return err
}
