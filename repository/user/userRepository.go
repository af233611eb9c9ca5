package user

import (
	"context"
	"database/sql"
	"encoding/json"

	"rentaladmin/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO users (username, email, roles, password_hash, first_name, last_name, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		u.Username, u.Email, roles, u.PasswordHash, u.FirstName, u.LastName, u.Status,
	).Scan(&u.ID, &u.CreatedAt)
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var roles []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &roles, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(roles, &u.Roles); err != nil {
		return nil, err
	}
	return u, nil
}

const userCols = `id, username, email, roles, password_hash, first_name, last_name, status, created_at, updated_at`

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(username) = lower($1)`, username))
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var roles []byte
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &roles, &u.PasswordHash,
			&u.FirstName, &u.LastName, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(roles, &u.Roles); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	const q = `
		UPDATE users
		SET username = $2, email = $3, roles = $4, password_hash = $5,
		    first_name = $6, last_name = $7, status = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.QueryRowContext(ctx, q,
		u.ID, u.Username, u.Email, roles, u.PasswordHash, u.FirstName, u.LastName, u.Status,
	).Scan(&u.UpdatedAt)
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
