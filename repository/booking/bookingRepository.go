package booking

import (
	"context"
	"database/sql"

	"rentaladmin/model"
)

type Repo interface {
	ListAll(ctx context.Context) ([]model.Booking, error)
	// ListOwnedOrLegacy applies the staff visibility rule inside the query:
	// rows owned by userID or rows without an owner. Other owners' rows are
	// never fetched.
	ListOwnedOrLegacy(ctx context.Context, userID int64) ([]model.Booking, error)
	ByID(ctx context.Context, id int64) (*model.Booking, error)

	Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error)
	ClaimOwnership(ctx context.Context, tx *sql.Tx, bookingID, userID int64) (bool, error)
	Update(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	// LockEquipment takes a row lock so the availability check and the
	// booking write are one unit.
	LockEquipment(ctx context.Context, tx *sql.Tx, equipmentID int64) (*model.Equipment, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const listQ = `
	SELECT b.id, b.equipment_id, b.customer_name, b.customer_email,
	       b.start_date, b.end_date, b.status, b.created_by,
	       e.name, p.id
	FROM bookings b
	JOIN equipment e ON e.id = b.equipment_id
	LEFT JOIN payments p ON p.booking_id = b.id`

func (r *repo) scanList(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.EquipmentID, &b.CustomerName, &b.CustomerEmail,
			&b.StartDate, &b.EndDate, &b.Status, &b.CreatedBy,
			&b.EquipmentName, &b.PaymentID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ListAll(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listQ+` ORDER BY b.id`)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r *repo) ListOwnedOrLegacy(ctx context.Context, userID int64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		listQ+` WHERE b.created_by = $1 OR b.created_by IS NULL ORDER BY b.id`, userID)
	if err != nil {
		return nil, err
	}
	return r.scanList(rows)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRowContext(ctx, listQ+` WHERE b.id = $1`, id).Scan(
		&b.ID, &b.EquipmentID, &b.CustomerName, &b.CustomerEmail,
		&b.StartDate, &b.EndDate, &b.Status, &b.CreatedBy,
		&b.EquipmentName, &b.PaymentID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `
		INSERT INTO bookings (equipment_id, customer_name, customer_email, start_date, end_date, status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`
	return tx.QueryRowContext(ctx, q,
		b.EquipmentID, b.CustomerName, b.CustomerEmail, b.StartDate, b.EndDate, b.Status, b.CreatedBy,
	).Scan(&b.ID)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error) {
	const q = `
		SELECT id, equipment_id, customer_name, customer_email, start_date, end_date, status, created_by
		FROM bookings
		WHERE id = $1
		FOR UPDATE`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.EquipmentID, &b.CustomerName, &b.CustomerEmail,
		&b.StartDate, &b.EndDate, &b.Status, &b.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ClaimOwnership assigns the owner only while the row is still unowned, so
// concurrent writers cannot both win.
func (r *repo) ClaimOwnership(ctx context.Context, tx *sql.Tx, bookingID, userID int64) (bool, error) {
	const q = `
		UPDATE bookings
		SET created_by = $2
		WHERE id = $1
		AND created_by IS NULL`
	res, err := tx.ExecContext(ctx, q, bookingID, userID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Update(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `
		UPDATE bookings
		SET equipment_id = $2, customer_name = $3, customer_email = $4,
		    start_date = $5, end_date = $6, status = $7
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q,
		b.ID, b.EquipmentID, b.CustomerName, b.CustomerEmail, b.StartDate, b.EndDate, b.Status)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}

func (r *repo) LockEquipment(ctx context.Context, tx *sql.Tx, equipmentID int64) (*model.Equipment, error) {
	const q = `
		SELECT id, equipment_type, name, availability, price
		FROM equipment
		WHERE id = $1
		FOR UPDATE`
	var e model.Equipment
	err := tx.QueryRowContext(ctx, q, equipmentID).Scan(
		&e.ID, &e.EquipmentType, &e.Name, &e.Availability, &e.Price)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
