package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timeclock/internal/domain"
)

// UserDirectory implements ports.UserDirectory on the users table.
type UserDirectory struct {
	db *sql.DB
}

func NewUserDirectory(db *sql.DB) *UserDirectory { return &UserDirectory{db: db} }

func (d *UserDirectory) Get(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	var role string
	err := d.db.QueryRowContext(ctx, `SELECT email, full_name, role FROM users WHERE email = ?`, email).
		Scan(&u.Email, &u.FullName, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("mysql: get user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (d *UserDirectory) List(ctx context.Context) ([]domain.User, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT email, full_name, role FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("mysql: list users: %w", err)
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.Email, &u.FullName, &role); err != nil {
			return nil, err
		}
		u.Role = domain.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *UserDirectory) Upsert(ctx context.Context, u domain.User) error {
	if u.Email == "" {
		return &domain.ValidationError{Field: "email", Msg: "is required"}
	}
	const q = `
INSERT INTO users (email, full_name, role) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE full_name=VALUES(full_name), role=VALUES(role)`
	_, err := d.db.ExecContext(ctx, q, u.Email, u.FullName, string(u.Role))
	return err
}
