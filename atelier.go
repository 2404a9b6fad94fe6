package atelier

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const eventBuffer = 16

var (
	// ErrStopped is returned by Post once the coordinator has finished.
	ErrStopped = errors.New("coordinator stopped")

	errAlreadyRan = errors.New("coordinator can only run once")
)

// Coordinator owns the application lifecycle: it starts the API server when
// the platform is ready, manages the single main window, applies the
// last-window policy and stops the server exactly once on quit.
//
// Platform callbacks never touch state directly. They post an [Event] and
// [Coordinator.Run] applies events one at a time.
type Coordinator struct {
	server   APIServer
	shell    Shell
	policy   Policy
	devTools bool
	window   WindowOptions
	version  string
	logger   zerolog.Logger
	bridge   *Bridge

	events chan Event
	done   chan struct{}
	ran    atomic.Bool

	stopOnce sync.Once

	mu    sync.RWMutex
	state State
	win   Window
}

// New creates a [Coordinator]. A server and a shell are required.
//
// Example:
//
//	c, err := atelier.New(
//	    atelier.WithServer(srv),
//	    atelier.WithShell(shell.NewHeadless(logger)),
//	    atelier.WithDevTools(dev),
//	)
func New(opts ...Option) (*Coordinator, error) {
	cfg := &coordConfig{
		policy:  DefaultPolicy(),
		window:  DefaultWindowOptions(),
		version: "dev",
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.server == nil {
		return nil, errors.New("api server is required")
	}
	if cfg.shell == nil {
		return nil, errors.New("shell is required")
	}

	c := &Coordinator{
		server:   cfg.server,
		shell:    cfg.shell,
		policy:   cfg.policy,
		devTools: cfg.devTools,
		window:   cfg.window,
		version:  cfg.version,
		logger:   cfg.logger,
		events:   make(chan Event, eventBuffer),
		done:     make(chan struct{}),
	}
	c.bridge = newBridge(c, cfg.version, cfg.logger)
	return c, nil
}

// Bridge returns the privileged bridge attached to the main window.
func (c *Coordinator) Bridge() *Bridge {
	return c.bridge
}

// State reports the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Window returns the main window, or nil when none is open.
func (c *Coordinator) Window() Window {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.win
}

// Done is closed when Run has returned.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Post queues a platform event. It blocks while the queue is full and
// returns [ErrStopped] once Run has finished.
func (c *Coordinator) Post(ev Event) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}
	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return ErrStopped
	}
}

// Run applies posted events until the app quits.
//
// Run returns nil after a normal quit (BeforeQuit, the last window closing
// under [QuitOnLastWindowClosed], or ctx cancellation). It returns an error
// when startup fails; startup is never retried.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.ran.CompareAndSwap(false, true) {
		return errAlreadyRan
	}
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug().Msg("context cancelled, quitting")
			c.quit(context.WithoutCancel(ctx))
			return nil

		case ev := <-c.events:
			finished, err := c.handle(ctx, ev)
			if err != nil {
				return err
			}
			if finished {
				return nil
			}
		}
	}
}

// handle applies one event. finished reports that the app has quit.
func (c *Coordinator) handle(ctx context.Context, ev Event) (finished bool, err error) {
	c.logger.Debug().Stringer("event", ev.Type).Stringer("state", c.State()).Msg("lifecycle event")

	switch ev.Type {
	case EventReady:
		return false, c.onReady(ctx)

	case EventActivate:
		c.onActivate(ctx)
		return false, nil

	case EventWindowClosed:
		return c.onWindowClosed(ctx, ev.WindowID), nil

	case EventBeforeQuit:
		c.quit(ctx)
		return true, nil

	default:
		c.logger.Warn().Int("type", int(ev.Type)).Msg("ignoring unknown lifecycle event")
		return false, nil
	}
}

func (c *Coordinator) onReady(ctx context.Context) error {
	if c.State() != StateNotStarted {
		c.logger.Debug().Msg("ignoring repeated ready")
		return nil
	}

	if err := c.server.Start(ctx); err != nil {
		c.fail()
		return errors.Wrap(err, "start api server")
	}

	if err := c.createWindow(ctx); err != nil {
		if stopErr := c.server.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			c.logger.Error().Err(stopErr).Msg("failed to stop api server")
		}
		c.fail()
		return err
	}

	c.setState(StateRunning)
	c.logger.Info().Str("url", c.server.URL()).Msg("application ready")
	return nil
}

func (c *Coordinator) onActivate(ctx context.Context) {
	if c.State() != StateRunning {
		return
	}
	if c.Window() != nil {
		return
	}
	if err := c.createWindow(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to reopen window")
	}
}

func (c *Coordinator) onWindowClosed(ctx context.Context, id string) bool {
	c.mu.Lock()
	if c.win != nil && (id == "" || id == c.win.ID()) {
		c.win = nil
	}
	remaining := c.win != nil
	state := c.state
	c.mu.Unlock()

	if remaining || state != StateRunning {
		return false
	}
	if c.policy == KeepAlive {
		c.logger.Debug().Msg("last window closed, staying alive")
		return false
	}
	c.quit(ctx)
	return true
}

// createWindow opens the main window and points it at the API server.
// The server must already be listening.
func (c *Coordinator) createWindow(ctx context.Context) error {
	opts := c.window
	opts.Bridge = c.bridge

	w, err := c.shell.OpenWindow(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "open window")
	}
	if err := w.Load(c.server.URL()); err != nil {
		w.Close()
		return errors.Wrap(err, "load window")
	}
	if c.devTools {
		w.OpenDevTools()
	}

	c.mu.Lock()
	c.win = w
	c.mu.Unlock()
	return nil
}

// quit stops the server exactly once and asks the shell to exit.
func (c *Coordinator) quit(ctx context.Context) {
	c.setState(StateStopping)

	c.stopOnce.Do(func() {
		if err := c.server.Stop(ctx); err != nil {
			c.logger.Error().Err(err).Msg("failed to stop api server")
		}
	})

	c.mu.Lock()
	c.win = nil
	c.mu.Unlock()

	c.shell.Quit()
	c.setState(StateStopped)
	c.logger.Info().Msg("application stopped")
}

func (c *Coordinator) fail() {
	c.shell.Quit()
	c.setState(StateStopped)
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
