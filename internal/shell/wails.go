package shell

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/jpalmerr/atelier"
)

// loadTimeout bounds how long the webview's first request waits for the
// API server to come up.
const loadTimeout = 30 * time.Second

// WailsConfig configures a [Wails] shell.
type WailsConfig struct {
	Window atelier.WindowOptions

	// KeepAlive hides the window on close instead of letting the app exit.
	KeepAlive bool

	// DevTools opens the web inspector when the webview starts.
	DevTools bool

	Logger zerolog.Logger
}

// Wails is an [atelier.Shell] backed by a wails webview. The platform owns
// a single webview, so at most one window is open at a time; reopening
// shows the hidden webview again.
type Wails struct {
	cfg     WailsConfig
	binding *Binding
	rt      windowRuntime

	proxy    atomic.Pointer[httputil.ReverseProxy]
	ready    chan struct{}
	loadOnce sync.Once

	mu   sync.Mutex
	ctx  context.Context
	post Poster
	seq  int
	win  *wailsWindow

	quitting atomic.Bool
	quitOnce sync.Once
}

// NewWails creates a [Wails] shell. Nothing is shown until [Wails.Run].
func NewWails(cfg WailsConfig) *Wails {
	if cfg.Window.Title == "" {
		cfg.Window = atelier.DefaultWindowOptions()
	}
	s := &Wails{
		cfg:     cfg,
		binding: &Binding{},
		rt:      wailsRuntime{},
		ready:   make(chan struct{}),
	}
	s.binding.onActivate = s.activate
	return s
}

// Run starts the native event loop and blocks until the app exits. Platform
// events are delivered through post. Must be called from the main goroutine.
func (s *Wails) Run(post Poster) error {
	if post == nil {
		return errors.New("poster is required")
	}
	s.mu.Lock()
	s.post = post
	s.mu.Unlock()

	err := wails.Run(&options.App{
		Title:     s.cfg.Window.Title,
		Width:     s.cfg.Window.Width,
		Height:    s.cfg.Window.Height,
		MinWidth:  1024,
		MinHeight: 700,
		AssetServer: &assetserver.Options{
			Handler: http.HandlerFunc(s.serveAsset),
		},
		OnStartup:     s.onStartup,
		OnBeforeClose: s.onBeforeClose,
		OnShutdown:    s.onShutdown,
		Bind:          []interface{}{s.binding},
		Debug: options.Debug{
			OpenInspectorOnStartup: s.cfg.DevTools,
		},
	})
	if err != nil {
		return errors.Wrap(err, "run desktop shell")
	}
	return nil
}

// OpenWindow implements [atelier.Shell].
func (s *Wails) OpenWindow(_ context.Context, opts atelier.WindowOptions) (atelier.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return nil, errors.New("desktop shell not started")
	}
	if s.win != nil {
		return nil, errors.New("window already open")
	}

	s.seq++
	w := &wailsWindow{shell: s, id: "main-" + strconv.Itoa(s.seq)}
	s.win = w
	s.binding.attach(s.ctx, opts.Bridge)

	s.rt.SetTitle(s.ctx, opts.Title)
	s.rt.SetSize(s.ctx, opts.Width, opts.Height)
	if s.seq > 1 {
		s.rt.Show(s.ctx)
	}
	return w, nil
}

// Quit implements [atelier.Shell].
func (s *Wails) Quit() {
	s.quitOnce.Do(func() {
		// set before runtime.Quit so onBeforeClose lets the exit through
		alreadyQuitting := s.quitting.Swap(true)

		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		if ctx != nil && !alreadyQuitting {
			s.rt.Quit(ctx)
		}
	})
}

func (s *Wails) onStartup(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	post := s.post
	s.mu.Unlock()

	s.emit(post, atelier.Event{Type: atelier.EventReady})
}

// onBeforeClose turns the user closing the window into a WindowClosed event
// and lets the coordinator decide. Returning true keeps the app alive.
func (s *Wails) onBeforeClose(ctx context.Context) bool {
	if s.quitting.Load() {
		return false
	}

	s.mu.Lock()
	w := s.win
	s.win = nil
	post := s.post
	s.mu.Unlock()

	if w == nil {
		// no window to close, so this is a quit request
		s.quitting.Store(true)
		s.emit(post, atelier.Event{Type: atelier.EventBeforeQuit})
		return false
	}

	if s.cfg.KeepAlive {
		s.rt.Hide(ctx)
	}
	s.emit(post, atelier.Event{Type: atelier.EventWindowClosed, WindowID: w.id})
	return true
}

// activate reports the page becoming visible again. After a keep-alive
// close the platform can show the hidden webview by itself (a dock click on
// macOS); the coordinator then reopens the window it had let go of.
func (s *Wails) activate() {
	if s.quitting.Load() {
		return
	}
	s.mu.Lock()
	open := s.win != nil
	started := s.ctx != nil
	post := s.post
	s.mu.Unlock()

	if open || !started {
		return
	}
	s.emit(post, atelier.Event{Type: atelier.EventActivate})
}

func (s *Wails) onShutdown(context.Context) {
	s.quitting.Store(true)
	s.mu.Lock()
	post := s.post
	s.mu.Unlock()
	s.emit(post, atelier.Event{Type: atelier.EventBeforeQuit})
}

func (s *Wails) emit(post Poster, ev atelier.Event) {
	if post == nil {
		return
	}
	if err := post(ev); err != nil {
		s.cfg.Logger.Debug().Err(err).Stringer("event", ev.Type).Msg("event dropped")
	}
}

// load points the asset proxy at the API server. The webview's first
// request blocks until this happens.
func (s *Wails) load(raw string) error {
	target, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "parse url %q", raw)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return errors.Errorf("unsupported url %q", raw)
	}

	s.proxy.Store(&httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
		},
		// stream SSE responses as they arrive
		FlushInterval: -1,
	})
	s.loadOnce.Do(func() { close(s.ready) })
	return nil
}

func (s *Wails) serveAsset(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.ready:
	case <-r.Context().Done():
		return
	case <-time.After(loadTimeout):
		http.Error(w, "application is still starting", http.StatusServiceUnavailable)
		return
	}
	s.proxy.Load().ServeHTTP(w, r)
}

func (s *Wails) closeWindow(w *wailsWindow) {
	s.mu.Lock()
	if s.win != w {
		s.mu.Unlock()
		return
	}
	s.win = nil
	ctx, post := s.ctx, s.post
	s.mu.Unlock()

	if s.cfg.KeepAlive {
		s.rt.Hide(ctx)
	}
	s.emit(post, atelier.Event{Type: atelier.EventWindowClosed, WindowID: w.id})
}

func (s *Wails) runtimeCtx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

type wailsWindow struct {
	shell *Wails
	id    string
}

func (w *wailsWindow) ID() string { return w.id }

func (w *wailsWindow) Load(url string) error {
	return w.shell.load(url)
}

// OpenDevTools is a no-op: wails opens the inspector at startup when
// WailsConfig.DevTools is set and has no runtime call for it.
func (w *wailsWindow) OpenDevTools() {
	w.shell.cfg.Logger.Debug().Bool("enabled", w.shell.cfg.DevTools).Msg("developer tools are opened at startup")
}

func (w *wailsWindow) Minimize() {
	w.shell.rt.Minimise(w.shell.runtimeCtx())
}

func (w *wailsWindow) ToggleMaximize() {
	w.shell.rt.ToggleMaximise(w.shell.runtimeCtx())
}

func (w *wailsWindow) Close() {
	w.shell.closeWindow(w)
}

func (w *wailsWindow) SelectDirectory(_ context.Context, opts atelier.DirectoryDialog) (string, error) {
	return w.shell.rt.OpenDirectory(w.shell.runtimeCtx(), runtime.OpenDialogOptions{
		Title:                opts.Title,
		CanCreateDirectories: true,
	})
}

func (w *wailsWindow) SaveFile(_ context.Context, opts atelier.SaveDialog) (string, error) {
	return w.shell.rt.SaveFile(w.shell.runtimeCtx(), runtime.SaveDialogOptions{
		Title:                opts.Title,
		DefaultFilename:      opts.DefaultFilename,
		Filters:              fileFilters(opts.Filters),
		CanCreateDirectories: true,
	})
}

func fileFilters(in []atelier.FileFilter) []runtime.FileFilter {
	out := make([]runtime.FileFilter, 0, len(in))
	for _, f := range in {
		patterns := make([]string, 0, len(f.Extensions))
		for _, ext := range f.Extensions {
			patterns = append(patterns, "*."+ext)
		}
		out = append(out, runtime.FileFilter{
			DisplayName: f.Name + " (" + strings.Join(patterns, ", ") + ")",
			Pattern:     strings.Join(patterns, ";"),
		})
	}
	return out
}

// windowRuntime is the part of the wails runtime the shell drives. Every
// call needs the context wails handed to OnStartup.
type windowRuntime interface {
	SetTitle(ctx context.Context, title string)
	SetSize(ctx context.Context, width, height int)
	Show(ctx context.Context)
	Hide(ctx context.Context)
	Minimise(ctx context.Context)
	ToggleMaximise(ctx context.Context)
	Quit(ctx context.Context)
	OpenDirectory(ctx context.Context, opts runtime.OpenDialogOptions) (string, error)
	SaveFile(ctx context.Context, opts runtime.SaveDialogOptions) (string, error)
}

type wailsRuntime struct{}

func (wailsRuntime) SetTitle(ctx context.Context, title string) { runtime.WindowSetTitle(ctx, title) }

func (wailsRuntime) SetSize(ctx context.Context, width, height int) {
	runtime.WindowSetSize(ctx, width, height)
}

func (wailsRuntime) Show(ctx context.Context) { runtime.WindowShow(ctx) }
func (wailsRuntime) Hide(ctx context.Context) { runtime.WindowHide(ctx) }
func (wailsRuntime) Minimise(ctx context.Context) { runtime.WindowMinimise(ctx) }
func (wailsRuntime) ToggleMaximise(ctx context.Context) { runtime.WindowToggleMaximise(ctx) }
func (wailsRuntime) Quit(ctx context.Context) { runtime.Quit(ctx) }

func (wailsRuntime) OpenDirectory(ctx context.Context, opts runtime.OpenDialogOptions) (string, error) {
	return runtime.OpenDirectoryDialog(ctx, opts)
}

func (wailsRuntime) SaveFile(ctx context.Context, opts runtime.SaveDialogOptions) (string, error) {
	return runtime.SaveFileDialog(ctx, opts)
}
