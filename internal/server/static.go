package server

import (
	"html"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const (
	defaultTitle = "Jewelry Order Management"

	// titlePlaceholder is the marker in index.html replaced with the title.
	titlePlaceholder = "{{.Title}}"
)

// staticHandler serves the UI bundle. The root path renders index.html with
// the title substituted; everything else is a plain file server.
type staticHandler struct {
	assets fs.FS
	title  string
	files  http.Handler
	logger zerolog.Logger
}

func newStaticHandler(assets fs.FS, title string, logger zerolog.Logger) *staticHandler {
	return &staticHandler{
		assets: assets,
		title:  title,
		files:  http.FileServer(http.FS(assets)),
		logger: logger,
	}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" || r.URL.Path == "/index.html" {
		h.serveIndex(w)
		return
	}
	h.files.ServeHTTP(w, r)
}

func (h *staticHandler) serveIndex(w http.ResponseWriter) {
	content, err := fs.ReadFile(h.assets, "index.html")
	if err != nil {
		h.logger.Error().Err(err).Msg("index.html missing from assets")
		http.Error(w, "UI not found", http.StatusInternalServerError)
		return
	}

	// escape to keep a configured title from injecting markup
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(h.title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write([]byte(rendered)); err != nil {
		h.logger.Error().Err(err).Msg("failed to write index response")
	}
}
