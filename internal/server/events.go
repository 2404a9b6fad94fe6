package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/reminder"
	"github.com/jpalmerr/atelier/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	healthTimeout = 2 * time.Second
)

// eventsHandler streams record changes via Server-Sent Events.
//
// A new stream first replays the latest change per resource, so a client
// that connects after a reminder sweep still sees its counts. Each write carries a deadline so a slow or vanished client cannot block the
// handler from noticing shutdown. The stream ends when the client goes away,
// the request context is cancelled, or the feed is closed.
func eventsHandler(f feed.Feed, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		rc := http.NewResponseController(w)
		deadlinesSupported := true

		writeAndFlush := func(c feed.Change) error {
			data, err := json.Marshal(c)
			if err != nil {
				return nil
			}
			if deadlinesSupported {
				if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
					logger.Debug().Err(err).Msg("sse write deadlines not supported")
					deadlinesSupported = false
				}
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Resource, data); err != nil {
				return err
			}
			return rc.Flush()
		}

		// subscribe before the headers go out so a client that has its
		// response in hand cannot miss a change
		ch := f.Subscribe()
		defer f.Unsubscribe(ch)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			return
		}

		// may repeat a change that is also queued on ch; clients only
		// use changes as a cue to refresh
		for _, c := range f.Latest() {
			if err := writeAndFlush(c); err != nil {
				return
			}
		}

		for {
			select {
			case c, ok := <-ch:
				if !ok {
					return
				}
				if err := writeAndFlush(c); err != nil {
					return
				}
			case <-r.Context().Done():
				// fires on client disconnect and on server stop via BaseContext
				return
			}
		}
	}
}

// healthHandler reports liveness, whether the database answers, and the
// last reminder sweep once one has run.
func healthHandler(db *store.DB, sweeps *reminder.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}

		body := map[string]any{"status": "ok"}
		if last := sweeps.Last(); !last.At.IsZero() {
			body["reminders"] = last
		}
		writeJSON(w, http.StatusOK, body)
	}
}
