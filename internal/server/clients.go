package server

import (
	"net/http"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/store"
)

type clientController struct {
	controller
}

func (c *clientController) list(w http.ResponseWriter, r *http.Request) {
	out, err := c.db.ListClients(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *clientController) create(w http.ResponseWriter, r *http.Request) {
	var in store.ClientInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	cl, err := c.db.CreateClient(r.Context(), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("clients", feed.ActionCreated, cl.ID, cl)
	writeJSON(w, http.StatusCreated, cl)
}

func (c *clientController) update(w http.ResponseWriter, r *http.Request) {
	var in store.ClientInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	cl, err := c.db.UpdateClient(r.Context(), pathID(r), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("clients", feed.ActionUpdated, cl.ID, cl)
	writeJSON(w, http.StatusOK, cl)
}

func (c *clientController) delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := c.db.DeleteClient(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("clients", feed.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
