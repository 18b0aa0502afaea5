package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timeclock/internal/adapter/memory"
	"timeclock/internal/app"
)

func newCLI(t *testing.T, user string) (*cli, *bytes.Buffer) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := app.NewWithStores(log, memory.NewStore(), memory.NewDirectory(), time.UTC)
	var out bytes.Buffer
	return &cli{app: a, user: user, out: &out}, &out
}

func TestCLISession(t *testing.T) {
	ctx := context.Background()
	c, out := newCLI(t, "aisha@example.com")

	if err := run(ctx, c, "clock-in", []string{"-task", "teaching,planning", "-location", "remote"}); err != nil {
		t.Fatalf("clock-in: %v", err)
	}
	if !strings.Contains(out.String(), "Clocked in at") {
		t.Fatalf("output: %q", out.String())
	}
	if err := run(ctx, c, "clock-in", []string{"-task", "admin", "-location", "remote"}); err == nil {
		t.Fatal("second clock-in must fail")
	}
	if err := run(ctx, c, "break", nil); err != nil {
		t.Fatalf("break: %v", err)
	}

	out.Reset()
	if err := run(ctx, c, "today", nil); err != nil {
		t.Fatalf("today: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Welcome back, User\n") || !strings.Contains(out.String(), "on_break") || !strings.Contains(out.String(), "Teaching, Planning") {
		t.Fatalf("today output:\n%s", out.String())
	}

	if err := run(ctx, c, "clock-out", []string{"-notes", "done"}); err != nil {
		t.Fatalf("clock-out: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sheet.csv")
	if err := run(ctx, c, "export", []string{"-period", "week", "-o", path}); err != nil {
		t.Fatalf("export: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(string(body), "\n"); len(lines) != 2 || !strings.HasSuffix(lines[1], ",done") {
		t.Fatalf("csv:\n%s", body)
	}
}

func TestCLIAdminCommandsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	c, out := newCLI(t, "boss@example.com")

	if err := run(ctx, c, "summary", nil); err == nil || !strings.Contains(err.Error(), "not an admin") {
		t.Fatalf("summary err = %v", err)
	}
	if err := run(ctx, c, "user-add", []string{"-email", "boss@example.com", "-name", "Omar Farouk", "-role", "admin"}); err != nil {
		t.Fatalf("user-add: %v", err)
	}
	out.Reset()
	if err := run(ctx, c, "summary", []string{"-period", "all"}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out.String(), "users 1") {
		t.Fatalf("summary output:\n%s", out.String())
	}
	out.Reset()
	if err := run(ctx, c, "calendar", []string{"-month", "2025-02"}); err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if !strings.HasPrefix(out.String(), "2025-02\nMon") {
		t.Fatalf("calendar output:\n%s", out.String())
	}
	if err := run(ctx, c, "admin-export", []string{"-o", "-"}); err == nil {
		t.Fatal("empty admin export must fail")
	}
}

func TestCLIRequiresUser(t *testing.T) {
	c, _ := newCLI(t, "")
	if err := run(context.Background(), c, "today", nil); err == nil {
		t.Fatal("expected error without user")
	}
	if err := run(context.Background(), c, "dance", nil); err != errUsage {
		t.Fatalf("unknown command err = %v", err)
	}
}
