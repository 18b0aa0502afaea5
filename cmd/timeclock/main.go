package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timeclock/internal/app"
	"timeclock/internal/config"
)

const usage = `usage: timeclock [-v] [-user email] <command> [flags]

commands:
  serve         run the HTTP API
  clock-in      start a session (-task, -location, -notes)
  clock-out     close the current session (-notes)
  break         start or end a break
  today         show today's sessions and running total
  timesheet     list your sessions (-period week|month|all)
  export        write your timesheet as CSV (-period, -o)
  admin-export  write all users' entries as CSV (-period, -status, -for, -q, -o)
  calendar      show a month of activity (-month yyyy-MM)
  summary       show the cross-user summary
  user-add      create or update a user (-email, -name, -role)
`

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging")
	user := flag.String("user", "", "Acting user email (default: TIMECLOCK_USER)")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	// Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *user != "" {
		cfg.User = *user
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// App
	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if cmd == "serve" {
		err = serve(ctx, logger, application, cfg.HTTP.Addr)
	} else {
		err = run(ctx, &cli{app: application, user: cfg.User, out: os.Stdout}, cmd, args)
	}
	if cerr := application.Close(); cerr != nil {
		logger.Warn("close failed", slog.String("error", cerr.Error()))
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		logger.Error(cmd+" failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// serve runs the HTTP API until ctx is cancelled.
func serve(ctx context.Context, log *slog.Logger, a *app.App, addr string) error {
	srv := a.HTTPServer(addr)
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
