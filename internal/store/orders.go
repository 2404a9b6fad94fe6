package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const orderColumns = `id, client_id, client_name, description, item_type, material, price, deposit,
	status, due_date, notes, created_at, updated_at`

// ListOrders returns orders, newest first. A non-empty status filters.
func (d *DB) ListOrders(ctx context.Context, status string) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	orders := []Order{}
	if err := d.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	deriveAll(orders, d.timestamp())
	return orders, nil
}

// OverdueOrders returns open orders whose due date is before now, oldest
// due date first. The WHERE clause is [IsOverdue] in SQL.
func (d *DB) OverdueOrders(ctx context.Context) ([]Order, error) {
	now := d.timestamp()
	query, args, err := sqlx.In(`SELECT `+orderColumns+` FROM orders
		WHERE due_date IS NOT NULL AND due_date < ? AND status NOT IN (?)
		ORDER BY due_date, id`, now, closedOrderStatuses)
	if err != nil {
		return nil, errors.Wrap(err, "build overdue query")
	}

	orders := []Order{}
	if err := d.db.SelectContext(ctx, &orders, d.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list overdue orders")
	}
	deriveAll(orders, now)
	return orders, nil
}

// IsOverdue reports whether o is open and past its due date at now.
func IsOverdue(o Order, now time.Time) bool {
	if o.DueDate == nil || contains(closedOrderStatuses, o.Status) {
		return false
	}
	return o.DueDate.Before(normalize(now))
}

// GetOrder returns one order or [ErrNotFound].
func (d *DB) GetOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	err := d.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, errors.Wrap(err, "get order")
	}
	o.derive(d.timestamp())
	return o, nil
}

// CreateOrder validates and stores a new order.
func (d *DB) CreateOrder(ctx context.Context, in OrderInput) (Order, error) {
	due, err := in.normalize()
	if err != nil {
		return Order{}, err
	}
	name, err := d.clientName(ctx, in.ClientID, in.ClientName)
	if err != nil {
		return Order{}, err
	}

	now := d.timestamp()
	o := Order{
		ID:          uuid.NewString(),
		ClientID:    in.ClientID,
		ClientName:  name,
		Description: in.Description,
		ItemType:    in.ItemType,
		Material:    in.Material,
		Price:       in.Price,
		Deposit:     in.Deposit,
		Status:      in.Status,
		DueDate:     due,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = d.db.NamedExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :client_id, :client_name, :description, :item_type, :material, :price, :deposit,
			:status, :due_date, :notes, :created_at, :updated_at)`, o)
	if err != nil {
		return Order{}, mapConstraint(err, "client_id", "insert order")
	}
	o.derive(now)
	return o, nil
}

// UpdateOrder replaces the writable fields of an order.
func (d *DB) UpdateOrder(ctx context.Context, id string, in OrderInput) (Order, error) {
	due, err := in.normalize()
	if err != nil {
		return Order{}, err
	}

	o, err := d.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	name, err := d.clientName(ctx, in.ClientID, in.ClientName)
	if err != nil {
		return Order{}, err
	}

	o.ClientID = in.ClientID
	o.ClientName = name
	o.Description = in.Description
	o.ItemType = in.ItemType
	o.Material = in.Material
	o.Price = in.Price
	o.Deposit = in.Deposit
	o.Status = in.Status
	o.DueDate = due
	o.Notes = in.Notes
	o.UpdatedAt = d.timestamp()

	res, err := d.db.NamedExecContext(ctx, `
		UPDATE orders SET client_id = :client_id, client_name = :client_name,
			description = :description, item_type = :item_type, material = :material,
			price = :price, deposit = :deposit, status = :status, due_date = :due_date,
			notes = :notes, updated_at = :updated_at
		WHERE id = :id`, o)
	if err != nil {
		return Order{}, mapConstraint(err, "client_id", "update order")
	}
	if err := expectRow(res); err != nil {
		return Order{}, err
	}
	o.derive(o.UpdatedAt)
	return o, nil
}

// DeleteOrder removes an order. Revenue entries keep their amount and lose
// the reference.
func (d *DB) DeleteOrder(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	return expectRow(res)
}
