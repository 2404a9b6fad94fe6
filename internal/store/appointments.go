package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const appointmentColumns = `id, client_id, client_name, title, scheduled_at, duration_minutes,
	status, notes, created_at, updated_at`

// ListAppointments returns appointments within r ordered by start time.
func (d *DB) ListAppointments(ctx context.Context, r Range) ([]Appointment, error) {
	where, args := rangeClause("scheduled_at", r)
	appts := []Appointment{}
	err := d.db.SelectContext(ctx, &appts,
		`SELECT `+appointmentColumns+` FROM appointments`+where+` ORDER BY scheduled_at`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list appointments")
	}
	return appts, nil
}

// GetAppointment returns one appointment or [ErrNotFound].
func (d *DB) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	var a Appointment
	err := d.db.GetContext(ctx, &a, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, errors.Wrap(err, "get appointment")
	}
	return a, nil
}

// CreateAppointment validates and stores a new appointment.
func (d *DB) CreateAppointment(ctx context.Context, in AppointmentInput) (Appointment, error) {
	at, err := in.normalize()
	if err != nil {
		return Appointment{}, err
	}
	name, err := d.clientName(ctx, in.ClientID, in.ClientName)
	if err != nil {
		return Appointment{}, err
	}

	now := d.timestamp()
	a := Appointment{
		ID:              uuid.NewString(),
		ClientID:        in.ClientID,
		ClientName:      name,
		Title:           in.Title,
		ScheduledAt:     at,
		DurationMinutes: in.DurationMinutes,
		Status:          in.Status,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err = d.db.NamedExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES (:id, :client_id, :client_name, :title, :scheduled_at, :duration_minutes,
			:status, :notes, :created_at, :updated_at)`, a)
	if err != nil {
		return Appointment{}, mapConstraint(err, "client_id", "insert appointment")
	}
	return a, nil
}

// UpdateAppointment replaces the writable fields of an appointment.
func (d *DB) UpdateAppointment(ctx context.Context, id string, in AppointmentInput) (Appointment, error) {
	at, err := in.normalize()
	if err != nil {
		return Appointment{}, err
	}

	a, err := d.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	name, err := d.clientName(ctx, in.ClientID, in.ClientName)
	if err != nil {
		return Appointment{}, err
	}

	a.ClientID = in.ClientID
	a.ClientName = name
	a.Title = in.Title
	a.ScheduledAt = at
	a.DurationMinutes = in.DurationMinutes
	a.Status = in.Status
	a.Notes = in.Notes
	a.UpdatedAt = d.timestamp()

	res, err := d.db.NamedExecContext(ctx, `
		UPDATE appointments SET client_id = :client_id, client_name = :client_name, title = :title,
			scheduled_at = :scheduled_at, duration_minutes = :duration_minutes, status = :status,
			notes = :notes, updated_at = :updated_at
		WHERE id = :id`, a)
	if err != nil {
		return Appointment{}, mapConstraint(err, "client_id", "update appointment")
	}
	if err := expectRow(res); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// DeleteAppointment removes an appointment.
func (d *DB) DeleteAppointment(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete appointment")
	}
	return expectRow(res)
}

// rangeClause builds a WHERE clause bounding column by r. To is exclusive.
func rangeClause(column string, r Range) (string, []any) {
	var conds []string
	var args []any
	if !r.From.IsZero() {
		conds = append(conds, column+" >= ?")
		args = append(args, normalize(r.From))
	}
	if !r.To.IsZero() {
		conds = append(conds, column+" < ?")
		args = append(args, normalize(r.To))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
