package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// upcomingWindow is how far ahead appointments count as upcoming.
const upcomingWindow = 7 * 24 * time.Hour

// DashboardStats computes the home screen summary at the current time.
func (d *DB) DashboardStats(ctx context.Context) (DashboardStats, error) {
	now := d.timestamp()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var s DashboardStats
	var err error

	if s.TotalRevenue, err = d.sumRevenue(ctx, Range{}); err != nil {
		return DashboardStats{}, err
	}
	if s.RevenueThisMonth, err = d.sumRevenue(ctx, Range{From: monthStart}); err != nil {
		return DashboardStats{}, err
	}
	if s.RevenueToday, err = d.sumRevenue(ctx, Range{From: dayStart}); err != nil {
		return DashboardStats{}, err
	}

	if err := d.db.GetContext(ctx, &s.TotalOrders, `SELECT COUNT(*) FROM orders`); err != nil {
		return DashboardStats{}, errors.Wrap(err, "count orders")
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM orders WHERE status NOT IN (?)`, closedOrderStatuses)
	if err != nil {
		return DashboardStats{}, errors.Wrap(err, "build active orders query")
	}
	if err := d.db.GetContext(ctx, &s.ActiveOrders, d.db.Rebind(query), args...); err != nil {
		return DashboardStats{}, errors.Wrap(err, "count active orders")
	}

	if s.OverdueOrders, err = d.CountOverdue(ctx); err != nil {
		return DashboardStats{}, err
	}
	if s.UpcomingAppointments, err = d.CountUpcoming(ctx, upcomingWindow); err != nil {
		return DashboardStats{}, err
	}

	if err := d.db.GetContext(ctx, &s.TotalClients, `SELECT COUNT(*) FROM clients`); err != nil {
		return DashboardStats{}, errors.Wrap(err, "count clients")
	}
	return s, nil
}

// CountOverdue counts open orders past their due date.
func (d *DB) CountOverdue(ctx context.Context) (int, error) {
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM orders
		WHERE due_date IS NOT NULL AND due_date < ? AND status NOT IN (?)`,
		d.timestamp(), closedOrderStatuses)
	if err != nil {
		return 0, errors.Wrap(err, "build overdue count query")
	}
	var n int
	if err := d.db.GetContext(ctx, &n, d.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, "count overdue orders")
	}
	return n, nil
}

// CountUpcoming counts scheduled appointments starting within the next
// window.
func (d *DB) CountUpcoming(ctx context.Context, window time.Duration) (int, error) {
	now := d.timestamp()
	var n int
	err := d.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM appointments
		WHERE status = ? AND scheduled_at >= ? AND scheduled_at < ?`,
		AppointmentScheduled, now, now.Add(window))
	if err != nil {
		return 0, errors.Wrap(err, "count upcoming appointments")
	}
	return n, nil
}

func (d *DB) sumRevenue(ctx context.Context, r Range) (float64, error) {
	where, args := rangeClause("received_at", r)
	var total float64
	err := d.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0.0) FROM revenue`+where, args...)
	if err != nil {
		return 0, errors.Wrap(err, "sum revenue")
	}
	return total, nil
}
