// Package atelier is a desktop application for running a small jewelry
// workshop: appointments, commissioned orders, clients and revenue.
//
// The application is three cooperating parts:
//
//   - an embedded HTTP API (internal/server) backed by a local sqlite file,
//   - a single native window that renders the UI served by that API,
//   - a [Bridge] that gives page scripts a small allow-listed set of
//     privileged operations (directory picker, export, window controls).
//
// # Lifecycle
//
// A [Coordinator] owns the server and the window. The native shell posts
// platform events and [Coordinator.Run] applies them in order:
//
//	c, _ := atelier.New(
//	    atelier.WithServer(srv),
//	    atelier.WithShell(sh),
//	)
//	go c.Post(atelier.Event{Type: atelier.EventReady})
//	err := c.Run(ctx) // returns after quit
//
// On Ready the server starts first and the window then loads its root URL.
// Startup failures are fatal and never retried. When the last window closes
// the [Policy] decides between quitting and staying alive (the macOS
// default). Quit stops the server exactly once.
//
// # Architecture
//
//   - internal/server: route table, controllers, SSE change stream, metrics
//   - internal/store: sqlite storage with embedded migrations
//   - internal/feed: in-memory pub/sub of record changes
//   - internal/reminder: scheduled sweep for overdue orders and upcoming appointments
//   - internal/shell: wails desktop shell and a headless shell
//   - ui: embedded UI bundle
//
// The internal packages are not part of the public API.
package atelier
