package store

import (
	"strings"
	"time"
)

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

// Order statuses.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderReady      = "ready"
	OrderCompleted  = "completed"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

var (
	appointmentStatuses = []string{AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow}
	orderStatuses       = []string{OrderPending, OrderInProgress, OrderReady, OrderCompleted, OrderDelivered, OrderCancelled}

	// closedOrderStatuses never count as overdue or active.
	closedOrderStatuses = []string{OrderCompleted, OrderDelivered, OrderCancelled}
)

// Client is a customer of the shop.
type Client struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClientInput is the writable part of a [Client].
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Appointment is a booked consultation, fitting or pickup.
type Appointment struct {
	ID              string    `db:"id" json:"id"`
	ClientID        *string   `db:"client_id" json:"client_id"`
	ClientName      string    `db:"client_name" json:"client_name"`
	Title           string    `db:"title" json:"title"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	Notes           string    `db:"notes" json:"notes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentInput is the writable part of an [Appointment].
// ScheduledAt accepts RFC3339, "2006-01-02T15:04" or "2006-01-02".
type AppointmentInput struct {
	ClientID        *string `json:"client_id"`
	ClientName      string  `json:"client_name"`
	Title           string  `json:"title"`
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
}

// Order is a commissioned piece or repair.
type Order struct {
	ID          string     `db:"id" json:"id"`
	ClientID    *string    `db:"client_id" json:"client_id"`
	ClientName  string     `db:"client_name" json:"client_name"`
	Description string     `db:"description" json:"description"`
	ItemType    string     `db:"item_type" json:"item_type"`
	Material    string     `db:"material" json:"material"`
	Price       float64    `db:"price" json:"price"`
	Deposit     float64    `db:"deposit" json:"deposit"`
	Status      string     `db:"status" json:"status"`
	DueDate     *time.Time `db:"due_date" json:"due_date"`
	Notes       string     `db:"notes" json:"notes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Balance is the amount still owed. Derived, not stored.
	Balance float64 `db:"-" json:"balance"`

	// Overdue is [IsOverdue] at read time. Derived, not stored.
	Overdue bool `db:"-" json:"overdue"`
}

// derive fills the computed fields.
func (o *Order) derive(now time.Time) {
	o.Balance = o.Price - o.Deposit
	o.Overdue = IsOverdue(*o, now)
}

func deriveAll(orders []Order, now time.Time) {
	for i := range orders {
		orders[i].derive(now)
	}
}

// OrderInput is the writable part of an [Order].
type OrderInput struct {
	ClientID    *string `json:"client_id"`
	ClientName  string  `json:"client_name"`
	Description string  `json:"description"`
	ItemType    string  `json:"item_type"`
	Material    string  `json:"material"`
	Price       float64 `json:"price"`
	Deposit     float64 `json:"deposit"`
	Status      string  `json:"status"`
	DueDate     string  `json:"due_date"`
	Notes       string  `json:"notes"`
}

// RevenueEntry is money received.
type RevenueEntry struct {
	ID            string    `db:"id" json:"id"`
	OrderID       *string   `db:"order_id" json:"order_id"`
	Amount        float64   `db:"amount" json:"amount"`
	Category      string    `db:"category" json:"category"`
	Description   string    `db:"description" json:"description"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	ReceivedAt    time.Time `db:"received_at" json:"received_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// RevenueInput is the writable part of a [RevenueEntry].
type RevenueInput struct {
	OrderID       *string `json:"order_id"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"payment_method"`
	ReceivedAt    string  `json:"received_at"`
}

// Range bounds a listing by time. Zero values are open ends.
type Range struct {
	From time.Time
	To   time.Time
}

// ReportRow is one group of a revenue report.
type ReportRow struct {
	Period string  `db:"period" json:"period"`
	Total  float64 `db:"total" json:"total"`
	Count  int     `db:"count" json:"count"`
}

// Report is an aggregated revenue report.
type Report struct {
	GroupBy string      `json:"group_by"`
	From    *time.Time  `json:"from,omitempty"`
	To      *time.Time  `json:"to,omitempty"`
	Rows    []ReportRow `json:"rows"`
	Total   float64     `json:"total"`
	Count   int         `json:"count"`
}

// DashboardStats is the summary shown on the home screen.
type DashboardStats struct {
	TotalRevenue         float64 `json:"total_revenue"`
	RevenueThisMonth     float64 `json:"revenue_this_month"`
	RevenueToday         float64 `json:"revenue_today"`
	TotalOrders          int     `json:"total_orders"`
	ActiveOrders         int     `json:"active_orders"`
	OverdueOrders        int     `json:"overdue_orders"`
	UpcomingAppointments int     `json:"upcoming_appointments"`
	TotalClients         int     `json:"total_clients"`
}

const dateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParseTime parses the date formats accepted by the API. Times without a
// zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return normalize(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseRangeEnd parses the upper bound of a [Range]. The bound is
// exclusive, so a bare date is taken as the midnight after it and the whole
// day is included.
func ParseRangeEnd(s string) (time.Time, error) {
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, err
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err == nil {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
