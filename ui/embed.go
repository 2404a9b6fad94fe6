// Package ui provides the embedded web UI bundle for atelier.
//
// The bundle is served by the API server as static files at "/" and is what
// the desktop window renders. A directory on disk can replace it at runtime
// (config: assets_dir) while iterating on the front end.
package ui

import (
	"embed"
	"io/fs"
)

// Assets contains the UI bundle under assets/.
//
//go:embed assets/*
var Assets embed.FS

// Root returns the bundle with the assets/ prefix stripped, so index.html
// is at the root of the returned filesystem.
func Root() fs.FS {
	sub, err := fs.Sub(Assets, "assets")
	if err != nil {
		// unreachable: the directory is embedded at compile time
		panic(err)
	}
	return sub
}
