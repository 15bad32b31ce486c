package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"couplecal/internal/config"
	"couplecal/internal/holiday"
	"couplecal/internal/ics"
	appLog "couplecal/internal/log"
	"couplecal/internal/model"
	"couplecal/internal/reminder"
)

// maxRangeDays bounds /api/holidays/range so a request cannot ask for
// centuries of holidays.
const maxRangeDays = 3 * 366

// Server exposes the holiday schedule over HTTP.
type Server struct {
	cfg       *config.Config
	loc       *time.Location
	now       func() time.Time
	reminders *reminder.Scheduler
	router    chi.Router
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithReminders exposes the scheduler's latest snapshot at /api/reminders.
func WithReminders(r *reminder.Scheduler) Option {
	return func(s *Server) { s.reminders = r }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		loc: cfg.Location(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Listen until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	// /health is always reachable without credentials.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled")
			r.Use(s.basicAuthMiddleware)
		}

		r.Route("/api", func(r chi.Router) {
			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", s.handleYear)
				r.Get("/upcoming", s.handleUpcoming)
				r.Get("/range", s.handleRange)
				r.Get("/{id}/next", s.handleNext)
			})
			r.Get("/reminders", s.handleReminders)
		})
		r.Get("/holidays.ics", s.handleFeed)
	})

	return r
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="couplecal", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// holidaysResponse is the JSON shape of every list endpoint.
type holidaysResponse struct {
	Holidays []model.Occurrence `json:"holidays"`
	Timezone string             `json:"timezone"`
	Now      time.Time          `json:"now"`
}

func (s *Server) respondHolidays(w http.ResponseWriter, now time.Time, occs []holiday.Occurrence) {
	writeJSON(w, http.StatusOK, holidaysResponse{
		Holidays: holiday.Models(occs, now),
		Timezone: s.loc.String(),
		Now:      now,
	})
}

// handleYear lists the holidays of one year.
//
// GET /api/holidays?year=2025 (default: current year)
func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	now := s.clock()
	year := now.Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1583 || y > 9999 {
			writeError(w, http.StatusBadRequest, "year must be an integer between 1583 and 9999")
			return
		}
		year = y
	}
	s.respondHolidays(w, now, holiday.ForYear(year, s.loc))
}

// handleUpcoming lists holidays at or after now through the end of next year.
//
// GET /api/holidays/upcoming?limit=5
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	now := s.clock()
	occs := holiday.Upcoming(now)
	if limit := parseIntDefault(r.URL.Query().Get("limit"), 0); limit > 0 && limit < len(occs) {
		occs = occs[:limit]
	}
	s.respondHolidays(w, now, occs)
}

// handleRange lists holidays dated within [from, to].
//
// GET /api/holidays/range?from=2025-01-01&to=2025-03-31
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.ParseInLocation("2006-01-02", q.Get("from"), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be a YYYY-MM-DD date")
		return
	}
	to, err := time.ParseInLocation("2006-01-02", q.Get("to"), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be a YYYY-MM-DD date")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to is before from")
		return
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		writeError(w, http.StatusBadRequest, "range is too long")
		return
	}
	s.respondHolidays(w, s.clock(), holiday.Between(from, to))
}

// nextResponse is the JSON shape of /api/holidays/{id}/next.
type nextResponse struct {
	Holiday model.Occurrence `json:"holiday"`
	Now     time.Time        `json:"now"`
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed holiday id")
		return
	}
	def, ok := holiday.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown holiday")
		return
	}

	now := s.clock()
	date, ok := holiday.NextOccurrence(def, now)
	if !ok {
		writeError(w, http.StatusNotFound, "holiday has no upcoming date")
		return
	}
	occ := holiday.Occurrence{Holiday: def, Date: date}
	writeJSON(w, http.StatusOK, nextResponse{Holiday: occ.Model(now), Now: now})
}

func (s *Server) handleReminders(w http.ResponseWriter, _ *http.Request) {
	if s.reminders == nil {
		writeError(w, http.StatusServiceUnavailable, "reminders are not running")
		return
	}
	snap, ok := s.reminders.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "reminders have not run yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleFeed serves the catalog as an iCalendar subscription.
func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	now := s.clock()
	body, err := ics.RenderFeed(holiday.Catalog(), ics.FeedConfig{
		Location: s.loc,
		FromYear: now.Year(),
		ToYear:   now.Year() + s.cfg.FeedYears - 1,
		Stamp:    now,
	})
	if err != nil {
		appLog.Error("feed render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render feed")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="holidays.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
