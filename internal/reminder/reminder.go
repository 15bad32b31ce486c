package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"couplecal/internal/holiday"
	appLog "couplecal/internal/log"
	"couplecal/internal/model"
)

// Snapshot is the result of the latest reminder run.
type Snapshot struct {
	GeneratedAt time.Time          `json:"generated_at"`
	WindowDays  int                `json:"window_days"`
	Holidays    []model.Occurrence `json:"holidays"`
}

// Scheduler periodically recomputes which holidays fall within the
// reminder window and logs them. The latest snapshot is kept in memory for
// the HTTP API.
type Scheduler struct {
	spec       string
	windowDays int
	loc        *time.Location
	now        func() time.Time

	cron *cron.Cron

	mu   sync.RWMutex
	last *Snapshot
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New builds a Scheduler running on the standard cron spec in loc.
// The spec is validated here so a bad schedule fails at startup.
func New(spec string, windowDays int, loc *time.Location, opts ...Option) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		spec:       spec,
		windowDays: windowDays,
		loc:        loc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := s.cron.AddFunc(spec, func() { s.Run() }); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the job once immediately and then on schedule until ctx is
// done. It returns without blocking.
func (s *Scheduler) Start(ctx context.Context) {
	s.Run()
	s.cron.Start()
	appLog.Info("reminder scheduler started", "spec", s.spec, "window_days", s.windowDays)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Run computes a snapshot, logs each holiday in the window and publishes it.
func (s *Scheduler) Run() Snapshot {
	now := s.now().In(s.loc)
	snap := Window(now, s.windowDays)

	for _, h := range snap.Holidays {
		appLog.Info("holiday reminder",
			"holiday", h.Name,
			"date", h.Start.Format("2006-01-02"),
			"days_until", h.DaysUntil,
		)
	}
	appLog.Debug("reminder run completed", "count", len(snap.Holidays))

	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()
	return snap
}

// Latest returns the most recent snapshot, or false before the first run.
func (s *Scheduler) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// Window selects the upcoming holidays dated no later than windowDays
// after now. It uses the same inclusive boundary as holiday.Upcoming.
func Window(now time.Time, windowDays int) Snapshot {
	limit := now.AddDate(0, 0, windowDays)

	selected := make([]holiday.Occurrence, 0)
	for _, occ := range holiday.Upcoming(now) {
		if occ.Date.After(limit) {
			break
		}
		selected = append(selected, occ)
	}

	return Snapshot{
		GeneratedAt: now,
		WindowDays:  windowDays,
		Holidays:    holiday.Models(selected, now),
	}
}

// cronLogger routes robfig/cron's logging into the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
