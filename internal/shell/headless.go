package shell

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jpalmerr/atelier"
)

// Headless is a [atelier.Shell] without any native UI.
type Headless struct {
	logger zerolog.Logger

	mu      sync.Mutex
	post    Poster
	seq     int
	windows map[string]*headlessWindow

	quit     chan struct{}
	quitOnce sync.Once
}

// NewHeadless creates a [Headless] shell.
func NewHeadless(logger zerolog.Logger) *Headless {
	return &Headless{
		logger:  logger,
		windows: make(map[string]*headlessWindow),
		quit:    make(chan struct{}),
	}
}

// Start connects the shell to a coordinator and reports the platform ready.
func (h *Headless) Start(post Poster) error {
	if post == nil {
		return errors.New("poster is required")
	}
	h.mu.Lock()
	h.post = post
	h.mu.Unlock()
	return post(atelier.Event{Type: atelier.EventReady})
}

// OpenWindow implements [atelier.Shell].
func (h *Headless) OpenWindow(_ context.Context, opts atelier.WindowOptions) (atelier.Window, error) {
	select {
	case <-h.quit:
		return nil, errors.New("shell has quit")
	default:
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	w := &headlessWindow{shell: h, id: "headless-" + strconv.Itoa(h.seq), opts: opts}
	h.windows[w.id] = w

	h.logger.Debug().Str("window", w.id).Str("title", opts.Title).Msg("window opened")
	return w, nil
}

// Quit implements [atelier.Shell].
func (h *Headless) Quit() {
	h.quitOnce.Do(func() {
		h.logger.Debug().Msg("shell quit")
		close(h.quit)
	})
}

// Done is closed after Quit.
func (h *Headless) Done() <-chan struct{} {
	return h.quit
}

// Windows is the number of open windows.
func (h *Headless) Windows() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.windows)
}

// CloseAll closes every open window, as a user closing them would.
func (h *Headless) CloseAll() {
	h.mu.Lock()
	open := make([]*headlessWindow, 0, len(h.windows))
	for _, w := range h.windows {
		open = append(open, w)
	}
	h.mu.Unlock()

	for _, w := range open {
		w.Close()
	}
}

func (h *Headless) closed(w *headlessWindow) {
	h.mu.Lock()
	_, ok := h.windows[w.id]
	delete(h.windows, w.id)
	post := h.post
	h.mu.Unlock()

	if !ok || post == nil {
		return
	}
	if err := post(atelier.Event{Type: atelier.EventWindowClosed, WindowID: w.id}); err != nil {
		h.logger.Debug().Err(err).Msg("window closed event dropped")
	}
}

type headlessWindow struct {
	shell *Headless
	id    string
	opts  atelier.WindowOptions

	mu  sync.Mutex
	url string
}

func (w *headlessWindow) ID() string { return w.id }

func (w *headlessWindow) Load(url string) error {
	if url == "" {
		return errors.New("empty url")
	}
	w.mu.Lock()
	w.url = url
	w.mu.Unlock()
	w.shell.logger.Info().Str("window", w.id).Str("url", url).Msg("window loaded")
	return nil
}

func (w *headlessWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

func (w *headlessWindow) OpenDevTools() {}

func (w *headlessWindow) Minimize() {}

func (w *headlessWindow) ToggleMaximize() {}

func (w *headlessWindow) Close() {
	w.shell.closed(w)
}

// Dialogs have nobody to answer them, so they always cancel.
func (w *headlessWindow) SelectDirectory(context.Context, atelier.DirectoryDialog) (string, error) {
	return "", nil
}

func (w *headlessWindow) SaveFile(context.Context, atelier.SaveDialog) (string, error) {
	return "", nil
}
