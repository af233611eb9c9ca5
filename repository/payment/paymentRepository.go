package payment

import (
	"context"
	"database/sql"

	"rentaladmin/model"
)

// BookingState is what the integrity checks need from a locked booking row.
type BookingState struct {
	BookingID         int64
	EquipmentPrice    float64
	ExistingPaymentID *int64
}

type Repo interface {
	ListAll(ctx context.Context) ([]model.Payment, error)
	ListOwnedOrLegacy(ctx context.Context, userID int64) ([]model.Payment, error)
	ByID(ctx context.Context, id int64) (*model.Payment, error)

	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Payment, error)
	ClaimOwnership(ctx context.Context, tx *sql.Tx, paymentID, userID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	// LockBooking locks the booking row and returns the attached equipment
	// price plus the id of any payment already linked to it.
	LockBooking(ctx context.Context, tx *sql.Tx, bookingID int64) (*BookingState, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const cols = `id, amount, method, status, payment_date, booking_id, created_by`

func (r *repo) scanList(rows *sql.Rows) ([]model.Payment, error) {
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.Amount, &p.Method, &p.Status,
			&p.PaymentDate, &p.BookingID, &p.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) ListAll(ctx context.Context) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cols+` FROM payments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r *repo) ListOwnedOrLegacy(ctx context.Context, userID int64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cols+` FROM payments WHERE created_by = $1 OR created_by IS NULL ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT `+cols+` FROM payments WHERE id = $1`, id).Scan(
		&p.ID, &p.Amount, &p.Method, &p.Status, &p.PaymentDate, &p.BookingID, &p.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
		INSERT INTO payments (amount, method, status, payment_date, booking_id, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	return tx.QueryRowContext(ctx, q,
		p.Amount, p.Method, p.Status, p.PaymentDate, p.BookingID, p.CreatedBy,
	).Scan(&p.ID)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Payment, error) {
	const q = `
		SELECT ` + cols + `
		FROM payments
		WHERE id = $1
		FOR UPDATE`
	var p model.Payment
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Amount, &p.Method, &p.Status, &p.PaymentDate, &p.BookingID, &p.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) ClaimOwnership(ctx context.Context, tx *sql.Tx, paymentID, userID int64) (bool, error) {
	const q = `
		UPDATE payments
		SET created_by = $2
		WHERE id = $1
		AND created_by IS NULL`
	res, err := tx.ExecContext(ctx, q, paymentID, userID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Update(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
		UPDATE payments
		SET amount = $2, method = $3, status = $4, payment_date = $5, booking_id = $6
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, p.ID, p.Amount, p.Method, p.Status, p.PaymentDate, p.BookingID)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return err
}

func (r *repo) LockBooking(ctx context.Context, tx *sql.Tx, bookingID int64) (*BookingState, error) {
	// Lock first, then read the joined state; the partial unique index on
	// payments(booking_id) stays authoritative under races.
	const lockQ = `
		SELECT id
		FROM bookings
		WHERE id = $1
		FOR UPDATE`
	st := &BookingState{}
	if err := tx.QueryRowContext(ctx, lockQ, bookingID).Scan(&st.BookingID); err != nil {
		return nil, err
	}

	const stateQ = `
		SELECT e.price, p.id
		FROM bookings b
		JOIN equipment e ON e.id = b.equipment_id
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.id = $1`
	if err := tx.QueryRowContext(ctx, stateQ, bookingID).Scan(&st.EquipmentPrice, &st.ExistingPaymentID); err != nil {
		return nil, err
	}
	return st, nil
}
