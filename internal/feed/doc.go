// Package feed provides an in-memory change feed for record mutations.
//
// Controllers publish a [Change] after every successful create, update or
// delete; the server streams changes to the UI over Server-Sent Events so open
// views can refresh without polling. The reminder sweep publishes its results
// on the same feed.
//
// Subscribers receive changes via buffered channels with non-blocking sends:
// a slow subscriber misses changes rather than blocking the publisher.
package feed
