package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Store drivers.
const (
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds file- and environment-driven configuration.
type Config struct {
	Store struct {
		Driver string `toml:"driver"` // mysql, sqlite (default) or memory
	} `toml:"store"`
	MySQL struct {
		DSN string `toml:"dsn"` // e.g., user:pass@tcp(host:3306)/timeclock
	} `toml:"mysql"`
	SQLite struct {
		DataDir string `toml:"data_dir"` // holds the database and the instance lock
		Path    string `toml:"path"`     // default: <data_dir>/timeclock.db
	} `toml:"sqlite"`
	HTTP struct {
		Addr string `toml:"addr"` // default: :8080
	} `toml:"http"`
	Timezone string `toml:"timezone"` // IANA name or Local (default)
	User     string `toml:"user"`     // CLI identity (email)

	loc *time.Location
}

// Location is the zone used for day boundaries and export timestamps.
func (c Config) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Load reads the optional TOML file named by TIMECLOCK_CONFIG, then applies
// environment overrides and defaults.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("TIMECLOCK_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	override(&cfg.Store.Driver, "TIMECLOCK_STORE")
	override(&cfg.MySQL.DSN, "MYSQL_DSN")
	override(&cfg.SQLite.DataDir, "TIMECLOCK_DATA_DIR")
	override(&cfg.SQLite.Path, "TIMECLOCK_SQLITE_PATH")
	override(&cfg.HTTP.Addr, "TIMECLOCK_HTTP_ADDR")
	override(&cfg.Timezone, "TIMECLOCK_TZ")
	override(&cfg.User, "TIMECLOCK_USER")

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreSQLite
	}
	if cfg.SQLite.DataDir == "" {
		cfg.SQLite.DataDir = defaultDataDir()
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(cfg.SQLite.DataDir, "timeclock.db")
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	switch cfg.Store.Driver {
	case StoreMySQL:
		if cfg.MySQL.DSN == "" {
			return cfg, errors.New("MYSQL_DSN is required for the mysql store")
		}
	case StoreSQLite, StoreMemory:
	default:
		return cfg, fmt.Errorf("TIMECLOCK_STORE must be mysql, sqlite or memory, got %q", cfg.Store.Driver)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid TIMECLOCK_TZ %q: %w", cfg.Timezone, err)
	}
	cfg.loc = loc

	return cfg, nil
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timeclock"
	}
	return filepath.Join(home, ".local", "share", "timeclock")
}
