package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const clientColumns = `id, name, email, phone, address, notes, created_at, updated_at`

// ListClients returns all clients ordered by name.
func (d *DB) ListClients(ctx context.Context) ([]Client, error) {
	clients := []Client{}
	err := d.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM clients ORDER BY name COLLATE NOCASE, created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "list clients")
	}
	return clients, nil
}

// GetClient returns one client or [ErrNotFound].
func (d *DB) GetClient(ctx context.Context, id string) (Client, error) {
	var c Client
	err := d.db.GetContext(ctx, &c, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	if err != nil {
		return Client{}, errors.Wrap(err, "get client")
	}
	return c, nil
}

// CreateClient validates and stores a new client.
func (d *DB) CreateClient(ctx context.Context, in ClientInput) (Client, error) {
	if err := in.normalize(); err != nil {
		return Client{}, err
	}

	now := d.timestamp()
	c := Client{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := d.db.NamedExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (:id, :name, :email, :phone, :address, :notes, :created_at, :updated_at)`, c)
	if err != nil {
		return Client{}, errors.Wrap(err, "insert client")
	}
	return c, nil
}

// UpdateClient replaces the writable fields of a client.
func (d *DB) UpdateClient(ctx context.Context, id string, in ClientInput) (Client, error) {
	if err := in.normalize(); err != nil {
		return Client{}, err
	}

	c, err := d.GetClient(ctx, id)
	if err != nil {
		return Client{}, err
	}
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.Notes = in.Notes
	c.UpdatedAt = d.timestamp()

	res, err := d.db.NamedExecContext(ctx, `
		UPDATE clients SET name = :name, email = :email, phone = :phone,
			address = :address, notes = :notes, updated_at = :updated_at
		WHERE id = :id`, c)
	if err != nil {
		return Client{}, errors.Wrap(err, "update client")
	}
	if err := expectRow(res); err != nil {
		return Client{}, err
	}
	return c, nil
}

// DeleteClient removes a client. Appointments and orders keep their
// denormalised client name and lose the reference.
func (d *DB) DeleteClient(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete client")
	}
	return expectRow(res)
}

// clientName resolves the display name for an optional client reference.
func (d *DB) clientName(ctx context.Context, clientID *string, given string) (string, error) {
	if given != "" || clientID == nil {
		return given, nil
	}
	c, err := d.GetClient(ctx, *clientID)
	if errors.Is(err, ErrNotFound) {
		return "", invalid("client_id", "unknown client %q", *clientID)
	}
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
