package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const revenueColumns = `id, order_id, amount, category, description, payment_method, received_at, created_at`

// Report groupings.
const (
	GroupByDay      = "day"
	GroupByMonth    = "month"
	GroupByCategory = "category"
)

// periodExpr maps a grouping to its SQL expression over the stored text
// timestamp ("2006-01-02 15:04:05+00:00").
var periodExpr = map[string]string{
	GroupByDay:      "substr(received_at, 1, 10)",
	GroupByMonth:    "substr(received_at, 1, 7)",
	GroupByCategory: "category",
}

// ListRevenue returns entries within r, most recent first.
func (d *DB) ListRevenue(ctx context.Context, r Range) ([]RevenueEntry, error) {
	where, args := rangeClause("received_at", r)
	entries := []RevenueEntry{}
	err := d.db.SelectContext(ctx, &entries,
		`SELECT `+revenueColumns+` FROM revenue`+where+` ORDER BY received_at DESC, id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list revenue")
	}
	return entries, nil
}

// AddRevenue validates and stores a revenue entry.
func (d *DB) AddRevenue(ctx context.Context, in RevenueInput) (RevenueEntry, error) {
	now := d.timestamp()
	at, err := in.normalize(now)
	if err != nil {
		return RevenueEntry{}, err
	}

	e := RevenueEntry{
		ID:            uuid.NewString(),
		OrderID:       in.OrderID,
		Amount:        in.Amount,
		Category:      in.Category,
		Description:   in.Description,
		PaymentMethod: in.PaymentMethod,
		ReceivedAt:    at,
		CreatedAt:     now,
	}

	_, err = d.db.NamedExecContext(ctx, `
		INSERT INTO revenue (`+revenueColumns+`)
		VALUES (:id, :order_id, :amount, :category, :description, :payment_method, :received_at, :created_at)`, e)
	if err != nil {
		return RevenueEntry{}, mapConstraint(err, "order_id", "insert revenue")
	}
	return e, nil
}

// RevenueReport aggregates entries within r. An empty groupBy means month.
func (d *DB) RevenueReport(ctx context.Context, groupBy string, r Range) (Report, error) {
	if groupBy == "" {
		groupBy = GroupByMonth
	}
	expr, ok := periodExpr[groupBy]
	if !ok {
		return Report{}, invalid("group_by", "must be day, month or category, got %q", groupBy)
	}

	where, args := rangeClause("received_at", r)
	rows := []ReportRow{}
	err := d.db.SelectContext(ctx, &rows, `
		SELECT `+expr+` AS period, COALESCE(SUM(amount), 0.0) AS total, COUNT(*) AS count
		FROM revenue`+where+`
		GROUP BY period ORDER BY period`, args...)
	if err != nil {
		return Report{}, errors.Wrap(err, "revenue report")
	}

	rep := Report{GroupBy: groupBy, Rows: rows}
	if !r.From.IsZero() {
		from := normalize(r.From)
		rep.From = &from
	}
	if !r.To.IsZero() {
		to := normalize(r.To)
		rep.To = &to
	}
	for _, row := range rows {
		rep.Total += row.Total
		rep.Count += row.Count
	}
	return rep, nil
}
