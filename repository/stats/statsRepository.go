// Read-side aggregates for the admin dashboard.
package stats

import (
	"context"
	"database/sql"
)

type Repo interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role string) (int64, error)
	CountEquipment(ctx context.Context) (int64, error)
	CountBookings(ctx context.Context) (int64, error)
	CountBookingsByStatus(ctx context.Context, status string) (int64, error)
	CountPayments(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) count(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (r *repo) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *repo) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE roles ? $1`, role)
}

func (r *repo) CountEquipment(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM equipment`)
}

func (r *repo) CountBookings(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookings`)
}

func (r *repo) CountBookingsByStatus(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1`, status)
}

func (r *repo) CountPayments(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM payments`)
}

// TotalRevenue keeps the historical status set ('Paid','Completed') even
// though 'Completed' is not an assignable payment status; see DESIGN.md.
func (r *repo) TotalRevenue(ctx context.Context) (float64, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status IN ('Paid', 'Completed')`
	var sum float64
	err := r.db.QueryRowContext(ctx, q).Scan(&sum)
	return sum, err
}
