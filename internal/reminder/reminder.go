// Package reminder runs a periodic sweep that counts overdue orders and
// upcoming appointments and publishes the result on the change feed, so the
// UI can badge them without polling the API.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jpalmerr/atelier/internal/feed"
)

const (
	// DefaultSchedule runs a sweep every minute.
	DefaultSchedule = "@every 1m"

	// DefaultWindow is how far ahead appointments count as upcoming.
	DefaultWindow = 24 * time.Hour

	sweepTimeout = 10 * time.Second
)

// Resource is the feed resource name used for sweep results.
const Resource = "reminders"

// Source answers the sweep queries. *store.DB implements it.
type Source interface {
	CountOverdue(ctx context.Context) (int, error)
	CountUpcoming(ctx context.Context, window time.Duration) (int, error)
}

// Recorder receives sweep outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordSweep(success bool)
}

// Summary is the result of one sweep.
type Summary struct {
	OverdueOrders        int           `json:"overdue_orders"`
	UpcomingAppointments int           `json:"upcoming_appointments"`
	Window               time.Duration `json:"window_ns"`
	At                   time.Time     `json:"at"`
}

// Config configures a [Scheduler].
type Config struct {
	Source    Source
	Publisher feed.Publisher
	Recorder  Recorder
	Logger    zerolog.Logger

	// Schedule is a cron expression or descriptor such as "@every 5m".
	Schedule string

	// Window bounds upcoming appointments. Defaults to 24h.
	Window time.Duration
}

// Scheduler owns the cron runner for the sweep.
type Scheduler struct {
	cfg  Config
	cron *cron.Cron

	mu      sync.Mutex
	started bool
	last    Summary
}

// New validates cfg and prepares a stopped scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Source == nil {
		return nil, errors.New("reminder source is required")
	}
	if cfg.Publisher == nil {
		cfg.Publisher = feed.Nop{}
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	s := &Scheduler{cfg: cfg, cron: cron.New()}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, errors.Wrapf(err, "invalid reminder schedule %q", cfg.Schedule)
	}
	return s, nil
}

// Start begins running sweeps on the schedule. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.cfg.Logger.Debug().Str("schedule", s.cfg.Schedule).Msg("reminder sweep scheduled")
}

// Stop halts the schedule and waits for a running sweep to finish.
// Safe to call when not started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

// Last returns the most recent successful sweep.
func (s *Scheduler) Last() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Sweep runs one sweep immediately and publishes the summary.
func (s *Scheduler) Sweep(ctx context.Context) (Summary, error) {
	overdue, err := s.cfg.Source.CountOverdue(ctx)
	if err != nil {
		s.record(false)
		return Summary{}, errors.Wrap(err, "reminder sweep")
	}
	upcoming, err := s.cfg.Source.CountUpcoming(ctx, s.cfg.Window)
	if err != nil {
		s.record(false)
		return Summary{}, errors.Wrap(err, "reminder sweep")
	}

	sum := Summary{
		OverdueOrders:        overdue,
		UpcomingAppointments: upcoming,
		Window:               s.cfg.Window,
		At:                   time.Now().UTC(),
	}

	s.mu.Lock()
	s.last = sum
	s.mu.Unlock()

	s.record(true)
	s.cfg.Publisher.Publish(feed.Change{Resource: Resource, Action: "sweep", Data: sum, At: sum.At})
	return sum, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	sum, err := s.Sweep(ctx)
	if err != nil {
		s.cfg.Logger.Warn().Err(err).Msg("reminder sweep failed")
		return
	}
	s.cfg.Logger.Debug().
		Int("overdue_orders", sum.OverdueOrders).
		Int("upcoming_appointments", sum.UpcomingAppointments).
		Msg("reminder sweep completed")
}

func (s *Scheduler) record(success bool) {
	if s.cfg.Recorder != nil {
		s.cfg.Recorder.RecordSweep(success)
	}
}
