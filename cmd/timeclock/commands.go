package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"timeclock/internal/app"
	"timeclock/internal/domain"
	"timeclock/internal/duration"
	"timeclock/internal/export"
	"timeclock/internal/query"
	"timeclock/internal/session"
)

var errUsage = errors.New("usage")

type cli struct {
	app  *app.App
	user string
	out  io.Writer
}

// run dispatches one non-serve command.
func run(ctx context.Context, c *cli, cmd string, args []string) error {
	switch cmd {
	case "clock-in":
		return c.clockIn(ctx, args)
	case "clock-out":
		return c.clockOut(ctx, args)
	case "break":
		return c.toggleBreak(ctx)
	case "today":
		return c.today(ctx)
	case "timesheet":
		return c.timesheet(ctx, args)
	case "export":
		return c.export(ctx, args)
	case "admin-export":
		return c.adminExport(ctx, args)
	case "calendar":
		return c.calendar(ctx, args)
	case "summary":
		return c.summary(ctx, args)
	case "user-add":
		return c.userAdd(ctx, args)
	}
	return errUsage
}

// listFlag collects repeated or comma-separated values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

func (c *cli) identity(ctx context.Context) (domain.User, error) {
	if c.user == "" {
		return domain.User{}, errors.New("no acting user: pass -user or set TIMECLOCK_USER")
	}
	return c.app.Identify(ctx, c.user)
}

func (c *cli) requireAdmin(ctx context.Context) error {
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return fmt.Errorf("%s is not an admin", u.Email)
	}
	return nil
}

func (c *cli) clockIn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clock-in", flag.ContinueOnError)
	var tasks listFlag
	fs.Var(&tasks, "task", "Task label, repeatable (Teaching, Admin, Planning, Other)")
	location := fs.String("location", "", "Work location")
	notes := fs.String("notes", "", "Session notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	e, err := c.app.Clock.ClockIn(ctx, session.ClockIn{Owner: u.Email, Tasks: tasks, Location: *location, Notes: *notes}, c.app.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Clocked in at %s (%s)\n", e.ClockIn.In(c.app.Location).Format("15:04"), e.Location)
	return nil
}

func (c *cli) clockOut(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clock-out", flag.ContinueOnError)
	notes := fs.String("notes", "", "Replace the session notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	e, err := c.app.Clock.ClockOut(ctx, u.Email, *notes, c.app.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Clocked out. Worked %s (break %dm)\n", duration.FormatHours(e.StoredHours()), e.BreakMinutes)
	return nil
}

func (c *cli) toggleBreak(ctx context.Context) error {
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	e, err := c.app.Clock.ToggleBreak(ctx, u.Email, c.app.Now())
	if err != nil {
		return err
	}
	if e.Status == domain.StatusOnBreak {
		fmt.Fprintln(c.out, "On break")
	} else {
		fmt.Fprintf(c.out, "Back to work (break so far %dm)\n", e.BreakMinutes)
	}
	return nil
}

func (c *cli) today(ctx context.Context) error {
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	now := c.app.Now()
	t, err := c.app.Clock.Today(ctx, u.Email, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Welcome back, %s\n", u.FirstName())
	fmt.Fprintf(c.out, "%s  total %s\n", t.Date, duration.FormatHours(t.TotalHours))
	if t.Current != nil {
		fmt.Fprintf(c.out, "current session %s, %s\n", t.Current.Status, duration.FormatMinutes(float64(t.SessionMinutes)))
	}
	return c.printEntries(t.Entries, now)
}

func (c *cli) timesheet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("timesheet", flag.ContinueOnError)
	period := fs.String("period", "month", "week, month or all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := query.ParsePeriod(*period, query.PeriodMonth)
	if err != nil {
		return err
	}
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	now := c.app.Now()
	ts, err := c.app.Reports.Timesheet(ctx, u.Email, p, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %s over %d days (avg %s/day), %d completed sessions\n",
		ts.Period, duration.FormatHours(ts.Stats.TotalHours), ts.Stats.WorkDays,
		duration.FormatHours(ts.Stats.AvgHoursPerDay), ts.Stats.CompletedSessions)
	return c.printEntries(ts.Entries, now)
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	period := fs.String("period", "month", "week, month or all")
	out := fs.String("o", "", "Output file, - for stdout (default: timesheet-<date>.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := query.ParsePeriod(*period, query.PeriodMonth)
	if err != nil {
		return err
	}
	u, err := c.identity(ctx)
	if err != nil {
		return err
	}
	now := c.app.Now()
	body, err := c.app.Reports.TimesheetCSV(ctx, u.Email, p, now)
	if err != nil {
		return err
	}
	return c.writeFile(*out, export.FileName("timesheet", now), body)
}

// adminFlags registers the admin filter flags on fs.
func adminFlags(fs *flag.FlagSet) func() (query.Filter, error) {
	period := fs.String("period", "week", "week, month or all")
	status := fs.String("status", "", "clocked_in, on_break or clocked_out")
	user := fs.String("for", "", "Only this user's email")
	search := fs.String("q", "", "Search by email or name")
	return func() (query.Filter, error) {
		p, err := query.ParsePeriod(*period, query.PeriodWeek)
		if err != nil {
			return query.Filter{}, err
		}
		f := query.Filter{Scope: query.AllUsers(), Period: p, User: *user, Search: *search}
		if *status != "" && *status != "all" {
			if f.Status, err = domain.ParseStatus(*status); err != nil {
				return query.Filter{}, err
			}
		}
		return f, nil
	}
}

func (c *cli) adminExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin-export", flag.ContinueOnError)
	filter := adminFlags(fs)
	out := fs.String("o", "", "Output file, - for stdout (default: admin-timesheet-<date>.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	now := c.app.Now()
	body, err := c.app.Reports.AdminCSV(ctx, f, now)
	if err != nil {
		return err
	}
	return c.writeFile(*out, export.FileName("admin-timesheet", now), body)
}

func (c *cli) calendar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ContinueOnError)
	filter := adminFlags(fs)
	month := fs.String("month", "", "Month as yyyy-MM (default: current)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	now := c.app.Now()
	m := now
	if *month != "" {
		if m, err = time.ParseInLocation("2006-01", *month, c.app.Location); err != nil {
			return fmt.Errorf("invalid -month %q, expected yyyy-MM", *month)
		}
	}
	cal, err := c.app.Reports.Calendar(ctx, f, m, now)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, cal.Month)
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Mon\tTue\tWed\tThu\tFri\tSat\tSun\t")
	col := 0
	for ; col < cal.LeadingBlanks; col++ {
		fmt.Fprint(tw, "\t")
	}
	for _, d := range cal.Days {
		cell := fmt.Sprintf("%2d", d.Day)
		if d.TotalHours > 0 {
			cell += " " + duration.FormatHours(d.TotalHours)
		}
		for _, u := range d.Users {
			cell += " " + u.Initials
		}
		if d.IsToday {
			cell = "*" + cell
		}
		fmt.Fprint(tw, cell+"\t")
		if col++; col%7 == 0 {
			fmt.Fprintln(tw)
		}
	}
	if col%7 != 0 {
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (c *cli) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	filter := adminFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}
	rep, err := c.app.Reports.Admin(ctx, f, c.app.Now())
	if err != nil {
		return err
	}
	s := rep.Summary
	fmt.Fprintf(c.out, "users %d (active %d, clocked in now %d)\nhours %s\nsessions %d (completed %d)\n",
		s.TotalUsers, s.ActiveUsers, s.CurrentlyActive, duration.FormatHours(s.TotalHours), s.Sessions, s.CompletedSessions)
	return nil
}

func (c *cli) userAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("user-add", flag.ContinueOnError)
	email := fs.String("email", "", "User email")
	name := fs.String("name", "", "Full name")
	role := fs.String("role", "member", "member or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.AddUser(ctx, *email, *name, domain.Role(*role)); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (%s)\n", strings.TrimSpace(*email), *role)
	return nil
}

func (c *cli) printEntries(entries []domain.TimeEntry, now time.Time) error {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no entries")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tIN\tOUT\tHOURS\tBREAK\tSTATUS\tTASKS\tLOCATION")
	for i := range entries {
		e := &entries[i]
		out := "-"
		if e.ClockOut != nil {
			out = e.ClockOut.In(c.app.Location).Format("15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dm\t%s\t%s\t%s\n",
			e.Date, e.ClockIn.In(c.app.Location).Format("15:04"), out,
			duration.FormatHours(duration.TotalHours(e, now)), duration.BreakMinutes(e, now),
			e.Status, strings.Join(e.TaskStrings(), ", "), e.Location)
	}
	return tw.Flush()
}

func (c *cli) writeFile(path, def, body string) error {
	if path == "-" {
		_, err := io.WriteString(c.out, body+"\n")
		return err
	}
	if path == "" {
		path = def
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(c.out, "Wrote %s\n", path)
	return nil
}
