package server

import (
	"net/http"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/store"
)

type appointmentController struct {
	controller
}

func (c *appointmentController) list(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	out, err := c.db.ListAppointments(r.Context(), rng)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *appointmentController) create(w http.ResponseWriter, r *http.Request) {
	var in store.AppointmentInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	a, err := c.db.CreateAppointment(r.Context(), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("appointments", feed.ActionCreated, a.ID, a)
	writeJSON(w, http.StatusCreated, a)
}

func (c *appointmentController) update(w http.ResponseWriter, r *http.Request) {
	var in store.AppointmentInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	a, err := c.db.UpdateAppointment(r.Context(), pathID(r), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("appointments", feed.ActionUpdated, a.ID, a)
	writeJSON(w, http.StatusOK, a)
}

func (c *appointmentController) delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := c.db.DeleteAppointment(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("appointments", feed.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
