package atelier

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// coordConfig holds mutable state during Coordinator construction.
type coordConfig struct {
	server   APIServer
	shell    Shell
	policy   Policy
	devTools bool
	window   WindowOptions
	version  string
	logger   zerolog.Logger
}

// Option configures a [Coordinator] during construction.
//
// Options return an error if validation fails.
type Option func(*coordConfig) error

// WithServer sets the embedded API server. Required.
func WithServer(s APIServer) Option {
	return func(cfg *coordConfig) error {
		if s == nil {
			return errors.New("server cannot be nil")
		}
		cfg.server = s
		return nil
	}
}

// WithShell sets the native shell that creates windows. Required.
func WithShell(s Shell) Option {
	return func(cfg *coordConfig) error {
		if s == nil {
			return errors.New("shell cannot be nil")
		}
		cfg.shell = s
		return nil
	}
}

// WithPolicy overrides the platform default last-window policy.
func WithPolicy(p Policy) Option {
	return func(cfg *coordConfig) error {
		if p != QuitOnLastWindowClosed && p != KeepAlive {
			return errors.Errorf("unknown policy %d", int(p))
		}
		cfg.policy = p
		return nil
	}
}

// WithDevTools opens developer tools on every window the coordinator creates.
func WithDevTools(enabled bool) Option {
	return func(cfg *coordConfig) error {
		cfg.devTools = enabled
		return nil
	}
}

// WithTitle sets the main window title. Defaults to "Jewelry Order Management".
func WithTitle(title string) Option {
	return func(cfg *coordConfig) error {
		if title == "" {
			return errors.New("title cannot be empty")
		}
		cfg.window.Title = title
		return nil
	}
}

// WithWindowSize sets the main window size. Defaults to 1400x900.
//
// Returns an error if either dimension is not positive.
func WithWindowSize(width, height int) Option {
	return func(cfg *coordConfig) error {
		if width <= 0 || height <= 0 {
			return errors.New("window size must be positive")
		}
		cfg.window.Width = width
		cfg.window.Height = height
		return nil
	}
}

// WithVersion sets the version reported over the bridge.
func WithVersion(v string) Option {
	return func(cfg *coordConfig) error {
		if v != "" {
			cfg.version = v
		}
		return nil
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *coordConfig) error {
		cfg.logger = logger
		return nil
	}
}
