package migrate

import (
	"strings"
	"testing"
)

func TestLoadOrdersEmbeddedMigrations(t *testing.T) {
	ms, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ms) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(ms))
	}
	for i := 1; i < len(ms); i++ {
		if ms[i].Version <= ms[i-1].Version {
			t.Fatalf("migrations out of order: %d after %d", ms[i].Version, ms[i-1].Version)
		}
	}
	if !strings.Contains(ms[0].SQL, "uq_time_entries_open") {
		t.Fatal("first migration must create the open-session unique key")
	}
}

func TestSplitStatements(t *testing.T) {
	src := `-- leading comment
CREATE TABLE a (
    id INT
);

CREATE TABLE b (id INT);
INSERT INTO b VALUES (1)`
	got := SplitStatements(src)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[0], "CREATE TABLE a") || strings.HasSuffix(got[0], ";") {
		t.Fatalf("unexpected first statement %q", got[0])
	}
	if got[2] != "INSERT INTO b VALUES (1)" {
		t.Fatalf("unexpected trailing statement %q", got[2])
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("0007_add_index.sql"); err != nil || v != 7 {
		t.Fatalf("parseVersion = %d, %v", v, err)
	}
	if _, err := parseVersion("add_index.sql"); err == nil {
		t.Fatal("expected error for missing prefix")
	}
}
