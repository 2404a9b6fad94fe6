package store

import (
	"strings"
	"time"
)

func (in *ClientInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalid("email", "must be an email address, got %q", in.Email)
	}
	return nil
}

func (in *AppointmentInput) normalize() (time.Time, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ClientID = emptyToNil(in.ClientID)

	if in.Title == "" {
		return time.Time{}, invalid("title", "is required")
	}
	if strings.TrimSpace(in.ScheduledAt) == "" {
		return time.Time{}, invalid("scheduled_at", "is required")
	}
	at, err := ParseTime(in.ScheduledAt)
	if err != nil {
		return time.Time{}, invalid("scheduled_at", "invalid date %q", in.ScheduledAt)
	}

	if in.DurationMinutes < 0 {
		return time.Time{}, invalid("duration_minutes", "cannot be negative")
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = 30
	}

	if in.Status == "" {
		in.Status = AppointmentScheduled
	}
	if !contains(appointmentStatuses, in.Status) {
		return time.Time{}, invalid("status", "must be one of %s", strings.Join(appointmentStatuses, ", "))
	}
	return at, nil
}

func (in *OrderInput) normalize() (*time.Time, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ClientID = emptyToNil(in.ClientID)

	if in.Description == "" {
		return nil, invalid("description", "is required")
	}
	if in.Price < 0 {
		return nil, invalid("price", "cannot be negative")
	}
	if in.Deposit < 0 {
		return nil, invalid("deposit", "cannot be negative")
	}

	if in.Status == "" {
		in.Status = OrderPending
	}
	if !contains(orderStatuses, in.Status) {
		return nil, invalid("status", "must be one of %s", strings.Join(orderStatuses, ", "))
	}

	if strings.TrimSpace(in.DueDate) == "" {
		return nil, nil
	}
	due, err := ParseTime(in.DueDate)
	if err != nil {
		return nil, invalid("due_date", "invalid date %q", in.DueDate)
	}
	return &due, nil
}

func (in *RevenueInput) normalize(now time.Time) (time.Time, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.OrderID = emptyToNil(in.OrderID)

	if in.Amount <= 0 {
		return time.Time{}, invalid("amount", "must be positive")
	}
	if in.Category == "" {
		in.Category = "sale"
	}

	if strings.TrimSpace(in.ReceivedAt) == "" {
		return now, nil
	}
	at, err := ParseTime(in.ReceivedAt)
	if err != nil {
		return time.Time{}, invalid("received_at", "invalid date %q", in.ReceivedAt)
	}
	return at, nil
}
