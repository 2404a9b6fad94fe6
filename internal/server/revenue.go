package server

import (
	"net/http"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/store"
)

type revenueController struct {
	controller
}

func (c *revenueController) list(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	out, err := c.db.ListRevenue(r.Context(), rng)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *revenueController) create(w http.ResponseWriter, r *http.Request) {
	var in store.RevenueInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	e, err := c.db.AddRevenue(r.Context(), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("revenue", feed.ActionCreated, e.ID, e)
	writeJSON(w, http.StatusCreated, e)
}

// report aggregates revenue by ?group_by=day|month|category within ?from=&to=.
func (c *revenueController) report(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	rep, err := c.db.RevenueReport(r.Context(), r.URL.Query().Get("group_by"), rng)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (c *revenueController) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.db.DashboardStats(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
