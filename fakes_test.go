package atelier

import (
	"context"
	"fmt"
	"sync"
)

type fakeServer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	running  bool
	startErr error
}

func (s *fakeServer) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.startErr != nil {
		return s.startErr
	}
	s.running = true
	return nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	s.running = false
	return nil
}

func (s *fakeServer) URL() string { return "http://127.0.0.1:3001" }

func (s *fakeServer) counts() (starts, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}

type fakeShell struct {
	mu      sync.Mutex
	windows []*fakeWindow
	opts    []WindowOptions
	quits   int
	openErr error
	loadErr error
}

func (s *fakeShell) OpenWindow(_ context.Context, opts WindowOptions) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	w := &fakeWindow{id: fmt.Sprintf("w%d", len(s.windows)+1), loadErr: s.loadErr}
	s.windows = append(s.windows, w)
	s.opts = append(s.opts, opts)
	return w, nil
}

func (s *fakeShell) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
}

func (s *fakeShell) opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *fakeShell) quitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quits
}

type fakeWindow struct {
	mu        sync.Mutex
	id        string
	loaded    string
	loadErr   error
	devTools  int
	minimized int
	toggled   int
	closed    bool

	dirPath   string
	savePath  string
	dialogErr error
	saveOpts  SaveDialog
}

func (w *fakeWindow) ID() string { return w.id }

func (w *fakeWindow) Load(url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loadErr != nil {
		return w.loadErr
	}
	w.loaded = url
	return nil
}

func (w *fakeWindow) OpenDevTools() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.devTools++
}

func (w *fakeWindow) Minimize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized++
}

func (w *fakeWindow) ToggleMaximize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.toggled++
}

func (w *fakeWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func (w *fakeWindow) SelectDirectory(context.Context, DirectoryDialog) (string, error) {
	return w.dirPath, w.dialogErr
}

func (w *fakeWindow) SaveFile(_ context.Context, opts SaveDialog) (string, error) {
	w.mu.Lock()
	w.saveOpts = opts
	w.mu.Unlock()
	return w.savePath, w.dialogErr
}

// staticWindows serves a fixed window to a Bridge.
type staticWindows struct {
	w Window
}

func (s staticWindows) Window() Window { return s.w }
