package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/hlog"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/metrics"
	"github.com/jpalmerr/atelier/internal/reminder"
	"github.com/jpalmerr/atelier/internal/store"
)

// routes assembles the request pipeline:
// access log → metrics → CORS → route table → static files.
// JSON bodies are decoded per handler with a size limit.
func (s *Server) routes(db *store.DB, broker *feed.Broker, m *metrics.Metrics, sweeps *reminder.Scheduler) http.Handler {
	base := controller{db: db, feed: broker, metrics: m, logger: s.cfg.Logger}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api.HandleFunc("/health", healthHandler(db, sweeps)).Methods(http.MethodGet)
	api.HandleFunc("/events", eventsHandler(broker, s.cfg.Logger)).Methods(http.MethodGet)

	appointments := &appointmentController{base}
	api.HandleFunc("/appointments", appointments.list).Methods(http.MethodGet)
	api.HandleFunc("/appointments", appointments.create).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{id}", appointments.update).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{id}", appointments.delete).Methods(http.MethodDelete)

	// /orders/overdue must be registered before /orders/{id}
	orders := &orderController{base}
	api.HandleFunc("/orders", orders.list).Methods(http.MethodGet)
	api.HandleFunc("/orders", orders.create).Methods(http.MethodPost)
	api.HandleFunc("/orders/overdue", orders.overdue).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", orders.update).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}", orders.delete).Methods(http.MethodDelete)

	clients := &clientController{base}
	api.HandleFunc("/clients", clients.list).Methods(http.MethodGet)
	api.HandleFunc("/clients", clients.create).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}", clients.update).Methods(http.MethodPut)
	api.HandleFunc("/clients/{id}", clients.delete).Methods(http.MethodDelete)

	revenue := &revenueController{base}
	api.HandleFunc("/revenue", revenue.list).Methods(http.MethodGet)
	api.HandleFunc("/revenue", revenue.create).Methods(http.MethodPost)
	api.HandleFunc("/revenue/reports", revenue.report).Methods(http.MethodGet)
	api.HandleFunc("/revenue/dashboard-stats", revenue.dashboardStats).Methods(http.MethodGet)

	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	static := newStaticHandler(s.cfg.Assets, s.cfg.Title, s.cfg.Logger)
	r.PathPrefix("/").Handler(static).Methods(http.MethodGet, http.MethodHead)

	r.Use(m.Middleware(routeTemplate))

	var h http.Handler = r
	h = cors.AllowAll().Handler(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(h)
	h = hlog.NewHandler(s.cfg.Logger)(h)
	return h
}

// routeTemplate labels metrics with the matched route so record ids do not
// become label values.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			if tpl == "/" {
				return "static"
			}
			return tpl
		}
	}
	return "unmatched"
}
