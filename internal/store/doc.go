// Package store provides the sqlite-backed database handle and the
// repositories for appointments, orders, clients and revenue.
//
// The handle is owned by the embedded API server: it is opened (and migrated)
// when the server starts and closed when it stops. sqlite serialises writers,
// so the handle keeps a single open connection and every repository method is
// safe to call from concurrent HTTP handlers.
//
// Timestamps are stored in UTC truncated to the second so that text
// comparisons in SQL order the same way the times do.
package store
