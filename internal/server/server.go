package server

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/metrics"
	"github.com/jpalmerr/atelier/internal/reminder"
	"github.com/jpalmerr/atelier/internal/store"
	"github.com/jpalmerr/atelier/ui"
)

const (
	// DefaultHost keeps the API reachable from this machine only.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the fixed local port the window loads from.
	DefaultPort = 3001

	shutdownTimeout = 5 * time.Second
)

// Config configures a [Server].
type Config struct {
	// Host is the interface to bind. Defaults to 127.0.0.1.
	Host string

	// Port is the TCP port. Zero picks a free port (tests).
	Port int

	// DatabasePath is the sqlite file. Required.
	DatabasePath string

	// Assets is the UI bundle with index.html at its root. Defaults to the
	// embedded bundle.
	Assets fs.FS

	// Title is substituted into index.html. Defaults to "Jewelry Order Management".
	Title string

	// ReminderSchedule is the cron expression for the reminder sweep.
	ReminderSchedule string

	// ReminderWindow bounds upcoming appointments in the sweep.
	ReminderWindow time.Duration

	Logger zerolog.Logger
}

// Server is the embedded API server.
//
// The zero state is stopped. Start and Stop may be called from any goroutine.
type Server struct {
	cfg Config

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	served     chan struct{}
	cancelBase context.CancelFunc
	db         *store.DB
	feed       *feed.Broker
	metrics    *metrics.Metrics
	reminders  *reminder.Scheduler
}

// New creates a stopped [Server]. Nothing is opened until [Server.Start].
func New(cfg Config) *Server {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Assets == nil {
		cfg.Assets = ui.Root()
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	return &Server{cfg: cfg}
}

// Start opens the database, builds the pipeline and begins serving in a
// background goroutine. It returns once the listener is bound.
//
// Calling Start on a running server is a no-op. A port already in use or an
// unavailable database is returned as an error and nothing is left running.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		s.cfg.Logger.Debug().Str("url", s.urlLocked()).Msg("api server already running")
		return nil
	}

	db, err := store.Open(s.cfg.DatabasePath)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}

	broker := feed.NewBroker()
	m := metrics.New()

	sched, err := reminder.New(reminder.Config{
		Source:    db,
		Publisher: broker,
		Recorder:  m,
		Logger:    s.cfg.Logger,
		Schedule:  s.cfg.ReminderSchedule,
		Window:    s.cfg.ReminderWindow,
	})
	if err != nil {
		_ = db.Close()
		return err
	}

	handler := s.routes(db, broker, m, sched)

	// create listener first to verify port availability synchronously
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "failed to bind to %s", addr)
	}

	// request contexts outlive the caller's ctx and are cancelled by Stop,
	// which ends long-running handlers like SSE
	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return baseCtx
		},
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.cfg.Logger.Error().Err(err).Msg("http server error")
		}
	}()

	sched.Start()

	s.httpServer = httpServer
	s.listener = ln
	s.served = served
	s.cancelBase = cancel
	s.db = db
	s.feed = broker
	s.metrics = m
	s.reminders = sched

	s.cfg.Logger.Info().Str("url", s.urlLocked()).Msg("api server listening")
	return nil
}

// Stop shuts the server down and closes the database. Safe to call when the
// server was never started or is already stopped.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer == nil {
		s.mu.Unlock()
		return nil
	}
	httpServer, served, cancel := s.httpServer, s.served, s.cancelBase
	db, broker, sched := s.db, s.feed, s.reminders
	s.httpServer, s.listener, s.served, s.cancelBase = nil, nil, nil, nil
	s.db, s.feed, s.metrics, s.reminders = nil, nil, nil, nil
	s.mu.Unlock()

	sched.Stop()
	broker.Close()
	cancel()

	shutdownCtx, done := context.WithTimeout(ctx, shutdownTimeout)
	defer done()

	var result error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.cfg.Logger.Error().Err(err).Msg("http server shutdown error")
		result = errors.Wrap(err, "shutdown http server")
		_ = httpServer.Close()
	}
	<-served

	if err := db.Close(); err != nil && result == nil {
		result = errors.Wrap(err, "close database")
	}

	s.cfg.Logger.Info().Msg("api server stopped")
	return result
}

// Running reports whether the server is listening.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpServer != nil
}

// URL is the root URL the window loads. Before Start it reflects the
// configured address.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked()
}

// Addr returns the bound address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) urlLocked() string {
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
}
