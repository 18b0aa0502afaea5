package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Migration is one embedded schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Load returns the embedded migrations ordered by version.
// Files must be named like 0001_description.sql.
func Load() ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]Migration, 0, len(files))
	seen := make(map[int]string)
	for _, f := range files {
		base := path.Base(f)
		ver, err := parseVersion(base)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		if prev, ok := seen[ver]; ok {
			return nil, fmt.Errorf("migrations %q and %q share version %d", prev, base, ver)
		}
		seen[ver] = base
		b, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: ver, Name: base, SQL: string(b)})
	}
	return out, nil
}

// Run applies pending migrations to a MySQL database. Statements inside a
// file are executed one by one, so the DSN does not need multiStatements.
func Run(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}
	migrations, err := Load()
	if err != nil {
		return err
	}
	applied, err := loadApplied(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			log.Debug("migration already applied", slog.Int("version", m.Version), slog.String("file", m.Name))
			continue
		}
		log.Info("applying migration", slog.Int("version", m.Version), slog.String("file", m.Name))
		for _, stmt := range SplitStatements(m.SQL) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("applying %s: %w", m.Name, err)
			}
		}
		if err := recordApplied(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

// SplitStatements splits a migration file on semicolons that end a line.
// Full-line "--" comments are dropped.
func SplitStatements(src string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(cur.String()); stmt != ";" {
				out = append(out, strings.TrimSuffix(stmt, ";"))
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        applied_at DATETIME(6) NOT NULL
    ) ENGINE=InnoDB`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func loadApplied(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		m[v] = true
	}
	return m, rows.Err()
}

func recordApplied(ctx context.Context, db *sql.DB, m Migration) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO schema_migrations(version, name, applied_at) VALUES(?, ?, ?)",
		m.Version, m.Name, time.Now().UTC())
	return err
}

func parseVersion(name string) (int, error) {
	// Expect prefix like 0001_...
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0, fmt.Errorf("missing prefix number")
	}
	return strconv.Atoi(name[:i])
}
