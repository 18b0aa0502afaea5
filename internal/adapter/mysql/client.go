// Package mysql implements the entry store and user directory on MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	drv "github.com/go-sql-driver/mysql"

	"timeclock/internal/migrate"
)

// Open connects using dsn and applies pending migrations.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true
func Open(ctx context.Context, dsn string, log *slog.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	// Timestamps are written and read as UTC.
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	connector, err := drv.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	// Conservative pool defaults; can be adjusted via env later.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.Run(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// isDuplicate reports whether err is a unique key violation on key.
func isDuplicate(err error, key string) bool {
	var me *drv.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	return key == "" || strings.Contains(me.Message, key)
}
