package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentaladmin/model"
)

// Filter narrows the admin log listing. Zero values mean "no filter".
type Filter struct {
	Username string
	Action   string
	Date     *time.Time
	Limit    int
}

type Repo interface {
	Insert(ctx context.Context, e *model.ActivityLog) error
	List(ctx context.Context, f Filter) ([]model.ActivityLog, error)
	ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, e *model.ActivityLog) error {
	const q = `
		INSERT INTO activity_logs (user_id, username, user_role, action, target_data)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		e.UserID, e.Username, e.UserRole, e.Action, e.TargetData,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.ActivityLog, error) {
	q := `
		SELECT id, user_id, username, user_role, action, target_data, created_at
		FROM activity_logs
		WHERE 1=1`
	args := []any{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}
	if f.Username != "" {
		q += ` AND username ILIKE ` + next()
		args = append(args, "%"+f.Username+"%")
	}
	if f.Action != "" {
		q += ` AND action ILIKE ` + next()
		args = append(args, "%"+f.Action+"%")
	}
	if f.Date != nil {
		q += ` AND created_at::date = ` + next()
		args = append(args, *f.Date)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ` + next()
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityLog
	for rows.Next() {
		var e model.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.UserRole,
			&e.Action, &e.TargetData, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	return r.List(ctx, Filter{Limit: limit})
}
