package equipment

import (
	"context"
	"database/sql"

	"rentaladmin/model"
)

type Repo interface {
	Create(ctx context.Context, e *model.Equipment) error
	List(ctx context.Context) ([]model.Equipment, error)
	ByID(ctx context.Context, id int64) (*model.Equipment, error)
	Update(ctx context.Context, e *model.Equipment) (bool, error)
	SetImageURL(ctx context.Context, id int64, key string) (bool, error)

	// Transactional delete path: the booking count and the delete must see
	// the same state.
	CountBookings(ctx context.Context, tx *sql.Tx, equipmentID int64) (int64, error)
	Delete(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, e *model.Equipment) error {
	const q = `
		INSERT INTO equipment (equipment_type, name, availability, price)
		VALUES ($1,$2,$3,$4)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, e.EquipmentType, e.Name, e.Availability, e.Price).Scan(&e.ID)
}

func (r *repo) List(ctx context.Context) ([]model.Equipment, error) {
	const q = `
		SELECT id, equipment_type, name, availability, price, image_url
		FROM equipment
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Equipment
	for rows.Next() {
		var e model.Equipment
		if err := rows.Scan(&e.ID, &e.EquipmentType, &e.Name, &e.Availability, &e.Price, &e.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Equipment, error) {
	const q = `
		SELECT id, equipment_type, name, availability, price, image_url
		FROM equipment
		WHERE id = $1`
	var e model.Equipment
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.EquipmentType, &e.Name, &e.Availability, &e.Price, &e.ImageURL); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) Update(ctx context.Context, e *model.Equipment) (bool, error) {
	const q = `
		UPDATE equipment
		SET equipment_type = $2, name = $3, availability = $4, price = $5
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, e.ID, e.EquipmentType, e.Name, e.Availability, e.Price)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) SetImageURL(ctx context.Context, id int64, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE equipment SET image_url = $2 WHERE id = $1`, id, key)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) CountBookings(ctx context.Context, tx *sql.Tx, equipmentID int64) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE equipment_id = $1`, equipmentID).Scan(&n)
	return n, err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
