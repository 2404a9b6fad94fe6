// Package server provides the embedded HTTP API that the desktop window
// renders and talks to.
//
// The server owns the database handle for its whole lifetime:
//
//   - [Server.Start] opens and migrates the database, builds the four
//     controllers (appointments, orders, clients, revenue), registers the
//     route table under /api, starts the reminder sweep and binds the
//     listener. Any failure is returned and is fatal to the caller.
//   - [Server.Stop] shuts the listener down gracefully (5-second timeout),
//     stops the sweep and closes the database.
//
// Both are idempotent. Besides the REST routes the server exposes
// /api/health, a Server-Sent Events stream of record changes at
// /api/events, Prometheus metrics at /metrics, and the UI bundle at "/".
package server
