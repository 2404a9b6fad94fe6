package server

import (
	"net/http"

	"github.com/jpalmerr/atelier/internal/feed"
	"github.com/jpalmerr/atelier/internal/store"
)

type orderController struct {
	controller
}

// list supports ?status= to filter by a single status.
func (c *orderController) list(w http.ResponseWriter, r *http.Request) {
	out, err := c.db.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// overdue lists open orders past their due date, earliest first.
func (c *orderController) overdue(w http.ResponseWriter, r *http.Request) {
	out, err := c.db.OverdueOrders(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *orderController) create(w http.ResponseWriter, r *http.Request) {
	var in store.OrderInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	o, err := c.db.CreateOrder(r.Context(), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("orders", feed.ActionCreated, o.ID, o)
	writeJSON(w, http.StatusCreated, o)
}

func (c *orderController) update(w http.ResponseWriter, r *http.Request) {
	var in store.OrderInput
	if err := decode(w, r, &in); err != nil {
		c.fail(w, r, err)
		return
	}
	o, err := c.db.UpdateOrder(r.Context(), pathID(r), in)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("orders", feed.ActionUpdated, o.ID, o)
	writeJSON(w, http.StatusOK, o)
}

func (c *orderController) delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := c.db.DeleteOrder(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	c.changed("orders", feed.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
