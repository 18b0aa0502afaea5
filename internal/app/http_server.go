package app

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"timeclock/internal/aggregate"
	"timeclock/internal/domain"
	"timeclock/internal/duration"
	"timeclock/internal/export"
	"timeclock/internal/query"
	"timeclock/internal/session"
	"timeclock/internal/usecase"
)

// UserHeader carries the authenticated email, set by the fronting proxy.
const UserHeader = "X-User-Email"

var (
	errUnauthenticated = errors.New("missing " + UserHeader + " header")
	errForbidden       = errors.New("admin role required")
)

// HTTPServer returns a configured http.Server exposing the tracker API.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// Handler routes the API.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /session/clock-in", a.self(a.handleClockIn))
	mux.HandleFunc("POST /session/clock-out", a.self(a.handleClockOut))
	mux.HandleFunc("POST /session/break", a.self(a.handleBreak))
	mux.HandleFunc("GET /today", a.self(a.handleToday))
	mux.HandleFunc("GET /timesheet", a.self(a.handleTimesheet))
	mux.HandleFunc("GET /timesheet/export", a.self(a.handleTimesheetExport))

	mux.HandleFunc("GET /admin/entries", a.admin(a.handleAdminEntries))
	mux.HandleFunc("GET /admin/summary", a.admin(a.handleAdminSummary))
	mux.HandleFunc("GET /admin/calendar", a.admin(a.handleAdminCalendar))
	mux.HandleFunc("GET /admin/export", a.admin(a.handleAdminExport))

	return loggingMiddleware(a.log, mux)
}

type userHandler func(w http.ResponseWriter, r *http.Request, u domain.User)

func (a *App) self(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get(UserHeader)
		if email == "" {
			a.writeError(w, errUnauthenticated)
			return
		}
		u, err := a.Identify(r.Context(), email)
		if err != nil {
			a.writeError(w, err)
			return
		}
		h(w, r, u)
	}
}

func (a *App) admin(h userHandler) http.HandlerFunc {
	return a.self(func(w http.ResponseWriter, r *http.Request, u domain.User) {
		if !u.IsAdmin() {
			a.writeError(w, errForbidden)
			return
		}
		h(w, r, u)
	})
}

type clockInRequest struct {
	Tasks    []string `json:"tasks"`
	Location string   `json:"location"`
	Notes    string   `json:"notes"`
}

type clockOutRequest struct {
	Notes string `json:"notes"`
}

func (a *App) handleClockIn(w http.ResponseWriter, r *http.Request, u domain.User) {
	var req clockInRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	now := a.Now()
	e, err := a.Clock.ClockIn(r.Context(), session.ClockIn{
		Owner:    u.Email,
		Tasks:    req.Tasks,
		Location: req.Location,
		Notes:    req.Notes,
	}, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEntryView(e, now))
}

func (a *App) handleClockOut(w http.ResponseWriter, r *http.Request, u domain.User) {
	var req clockOutRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	now := a.Now()
	e, err := a.Clock.ClockOut(r.Context(), u.Email, req.Notes, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryView(e, now))
}

func (a *App) handleBreak(w http.ResponseWriter, r *http.Request, u domain.User) {
	now := a.Now()
	e, err := a.Clock.ToggleBreak(r.Context(), u.Email, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryView(e, now))
}

func (a *App) handleToday(w http.ResponseWriter, r *http.Request, u domain.User) {
	now := a.Now()
	t, err := a.Clock.Today(r.Context(), u.Email, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTodayView(u, t, now))
}

func (a *App) handleTimesheet(w http.ResponseWriter, r *http.Request, u domain.User) {
	period, err := query.ParsePeriod(r.URL.Query().Get("period"), query.PeriodMonth)
	if err != nil {
		a.writeError(w, &domain.ValidationError{Field: "period", Msg: err.Error()})
		return
	}
	now := a.Now()
	ts, err := a.Reports.Timesheet(r.Context(), u.Email, period, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	v := timesheetView{
		Period:         string(ts.Period),
		Entries:        newEntryViews(ts.Entries, now),
		Stats:          ts.Stats,
		TotalFormatted: duration.FormatHours(ts.Stats.TotalHours),
	}
	if ts.Range.Bounded {
		v.From, v.To = domain.DateOf(ts.Range.Start), domain.DateOf(ts.Range.End)
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *App) handleTimesheetExport(w http.ResponseWriter, r *http.Request, u domain.User) {
	period, err := query.ParsePeriod(r.URL.Query().Get("period"), query.PeriodMonth)
	if err != nil {
		a.writeError(w, &domain.ValidationError{Field: "period", Msg: err.Error()})
		return
	}
	now := a.Now()
	body, err := a.Reports.TimesheetCSV(r.Context(), u.Email, period, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeCSV(w, export.FileName("timesheet", now), body)
}

func (a *App) handleAdminEntries(w http.ResponseWriter, r *http.Request, _ domain.User) {
	f, err := adminFilter(r.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	now := a.Now()
	rep, err := a.Reports.Admin(r.Context(), f, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminView{Entries: newEntryViews(rep.Entries, now), Summary: rep.Summary})
}

func (a *App) handleAdminSummary(w http.ResponseWriter, r *http.Request, _ domain.User) {
	f, err := adminFilter(r.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	rep, err := a.Reports.Admin(r.Context(), f, a.Now())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep.Summary)
}

func (a *App) handleAdminCalendar(w http.ResponseWriter, r *http.Request, _ domain.User) {
	q := r.URL.Query()
	f, err := adminFilter(q)
	if err != nil {
		a.writeError(w, err)
		return
	}
	now := a.Now()
	month := now
	if m := q.Get("month"); m != "" {
		if month, err = time.ParseInLocation("2006-01", m, a.Location); err != nil {
			a.writeError(w, &domain.ValidationError{Field: "month", Msg: "expected yyyy-MM"})
			return
		}
	}
	cal, err := a.Reports.Calendar(r.Context(), f, month, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (a *App) handleAdminExport(w http.ResponseWriter, r *http.Request, _ domain.User) {
	f, err := adminFilter(r.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	now := a.Now()
	body, err := a.Reports.AdminCSV(r.Context(), f, now)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeCSV(w, export.FileName("admin-timesheet", now), body)
}

// adminFilter reads period (default week), status, user and q.
func adminFilter(q url.Values) (query.Filter, error) {
	period, err := query.ParsePeriod(q.Get("period"), query.PeriodWeek)
	if err != nil {
		return query.Filter{}, &domain.ValidationError{Field: "period", Msg: err.Error()}
	}
	f := query.Filter{
		Scope:  query.AllUsers(),
		Period: period,
		User:   q.Get("user"),
		Search: q.Get("q"),
	}
	if s := q.Get("status"); s != "" && s != "all" {
		if f.Status, err = domain.ParseStatus(s); err != nil {
			return query.Filter{}, err
		}
	}
	return f, nil
}

type entryView struct {
	ID             string     `json:"id"`
	Owner          string     `json:"owner"`
	Date           string     `json:"date"`
	ClockIn        time.Time  `json:"clock_in"`
	ClockOut       *time.Time `json:"clock_out,omitempty"`
	Status         string     `json:"status"`
	Tasks          []string   `json:"tasks"`
	Location       string     `json:"location"`
	Notes          string     `json:"notes"`
	BreakMinutes   int        `json:"break_minutes"`
	TotalHours     float64    `json:"total_hours"`
	TotalFormatted string     `json:"total_formatted"`
	Version        int64      `json:"version"`
}

func newEntryView(e domain.TimeEntry, now time.Time) entryView {
	hours := duration.TotalHours(&e, now)
	return entryView{
		ID:             e.ID,
		Owner:          e.Owner,
		Date:           e.Date,
		ClockIn:        e.ClockIn,
		ClockOut:       e.ClockOut,
		Status:         string(e.Status),
		Tasks:          e.TaskStrings(),
		Location:       string(e.Location),
		Notes:          e.Notes,
		BreakMinutes:   duration.BreakMinutes(&e, now),
		TotalHours:     hours,
		TotalFormatted: duration.FormatHours(hours),
		Version:        e.Version,
	}
}

func newEntryViews(entries []domain.TimeEntry, now time.Time) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryView(e, now))
	}
	return out
}

type todayView struct {
	Greeting       string      `json:"greeting"`
	Date           string      `json:"date"`
	Entries        []entryView `json:"entries"`
	Current        *entryView  `json:"current,omitempty"`
	TotalHours     float64     `json:"total_hours"`
	TotalFormatted string      `json:"total_formatted"`
	SessionMinutes int         `json:"session_minutes"`
}

func newTodayView(u domain.User, t usecase.Today, now time.Time) todayView {
	v := todayView{
		Greeting:       "Welcome back, " + u.FirstName(),
		Date:           t.Date,
		Entries:        newEntryViews(t.Entries, now),
		TotalHours:     t.TotalHours,
		TotalFormatted: duration.FormatHours(t.TotalHours),
		SessionMinutes: t.SessionMinutes,
	}
	if t.Current != nil {
		cur := newEntryView(*t.Current, now)
		v.Current = &cur
	}
	return v
}

type timesheetView struct {
	Period         string                `json:"period"`
	From           string                `json:"from,omitempty"`
	To             string                `json:"to,omitempty"`
	Entries        []entryView           `json:"entries"`
	Stats          aggregate.PeriodStats `json:"stats"`
	TotalFormatted string                `json:"total_formatted"`
}

type adminView struct {
	Entries []entryView           `json:"entries"`
	Summary aggregate.UserSummary `json:"summary"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &domain.ValidationError{Field: "body", Msg: err.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCSV(w http.ResponseWriter, name, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyOpen),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoOpenEntry), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNothingToExport):
		return http.StatusNoContent
	}
	return http.StatusInternalServerError
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error":  err.Error(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
