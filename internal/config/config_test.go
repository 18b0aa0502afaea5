package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TIMECLOCK_CONFIG", "TIMECLOCK_STORE", "MYSQL_DSN", "TIMECLOCK_DATA_DIR",
		"TIMECLOCK_SQLITE_PATH", "TIMECLOCK_HTTP_ADDR", "TIMECLOCK_TZ", "TIMECLOCK_USER",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMECLOCK_DATA_DIR", "/tmp/tc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreSQLite {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if cfg.SQLite.Path != filepath.Join("/tmp/tc", "timeclock.db") {
		t.Errorf("sqlite path = %q", cfg.SQLite.Path)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Location() == nil {
		t.Errorf("nil location")
	}
}

func TestDefaultDataDirUnderHome(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantDir := filepath.Join(home, ".local", "share", "timeclock")
	if cfg.SQLite.DataDir != wantDir || cfg.SQLite.Path != filepath.Join(wantDir, "timeclock.db") {
		t.Errorf("data dir = %q, path = %q", cfg.SQLite.DataDir, cfg.SQLite.Path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "timeclock.toml")
	body := `
timezone = "Australia/Melbourne"
user = "file@example.com"

[store]
driver = "mysql"

[mysql]
dsn = "u:p@tcp(db:3306)/timeclock"

[http]
addr = ":9000"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMECLOCK_CONFIG", path)
	t.Setenv("TIMECLOCK_USER", "env@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreMySQL || cfg.MySQL.DSN != "u:p@tcp(db:3306)/timeclock" {
		t.Errorf("store = %q dsn = %q", cfg.Store.Driver, cfg.MySQL.DSN)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.User != "env@example.com" {
		t.Errorf("user = %q, env must win", cfg.User)
	}
	if cfg.Location().String() != "Australia/Melbourne" {
		t.Errorf("location = %v", cfg.Location())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"TIMECLOCK_STORE": "postgres"}, "TIMECLOCK_STORE"},
		{"mysql without dsn", map[string]string{"TIMECLOCK_STORE": "mysql"}, "MYSQL_DSN"},
		{"bad tz", map[string]string{"TIMECLOCK_TZ": "Mars/Olympus"}, "TIMECLOCK_TZ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestLoadBadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("store = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMECLOCK_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
