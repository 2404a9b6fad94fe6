package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/metrics"
	"github.com/jpalmerr/atelier/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// controller carries what every resource controller needs.
type controller struct {
	db      *store.DB
	feed    feed.Publisher
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// changed publishes a successful mutation and counts it.
func (c controller) changed(resource, action, id string, data any) {
	c.feed.Publish(feed.Change{Resource: resource, Action: action, ID: id, Data: data})
	c.metrics.RecordMutation(resource, action)
}

// fail maps a store error onto a status code.
func (c controller) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case store.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		c.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body of at most maxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &store.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// parseRange reads ?from= and ?to= as a [store.Range]. A date-only ?to=
// includes that day.
func parseRange(r *http.Request) (store.Range, error) {
	var rng store.Range
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := store.ParseTime(v)
		if err != nil {
			return rng, &store.ValidationError{Field: "from", Message: "invalid date " + v}
		}
		rng.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := store.ParseRangeEnd(v)
		if err != nil {
			return rng, &store.ValidationError{Field: "to", Message: "invalid date " + v}
		}
		rng.To = t
	}
	return rng, nil
}
