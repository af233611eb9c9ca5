package activity

import (
	"context"
	"log/slog"

	"rentaladmin/access"
	"rentaladmin/model"
	activityrepo "rentaladmin/repository/activity"
)

// Filter = repository shape
type Filter = activityrepo.Filter

type Repo interface {
	Insert(ctx context.Context, e *model.ActivityLog) error
	List(ctx context.Context, f Filter) ([]model.ActivityLog, error)
	ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error)
}

// Logger writes the audit trail. Writes are best-effort: a failed insert is
// reported to the operational log and swallowed so it can never abort the
// business operation that triggered it.
type Logger struct {
	r   Repo
	log *slog.Logger
}

func NewLogger(r Repo, log *slog.Logger) *Logger {
	return &Logger{r: r, log: log}
}

// Record appends one entry, denormalizing the actor at call time. A nil
// actor is recorded with the Anonymous sentinel.
func (l *Logger) Record(ctx context.Context, actor *access.Principal, action string, targetData string) {
	e := &model.ActivityLog{
		Action:   action,
		Username: "Anonymous",
		UserRole: "ANONYMOUS",
	}
	if targetData != "" {
		e.TargetData = &targetData
	}
	if actor != nil {
		id := actor.ID
		e.UserID = &id
		e.Username = actor.Username
		e.UserRole = actor.Role
	}

	if err := l.r.Insert(ctx, e); err != nil {
		l.log.Error("failed to write activity log",
			"action", action,
			"target_data", targetData,
			"err", err,
		)
	}
}

// List is the admin log view.
func (l *Logger) List(ctx context.Context, f Filter) ([]model.ActivityLog, error) {
	return l.r.List(ctx, f)
}

// Recent returns the newest entries for the dashboard feed.
func (l *Logger) Recent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	return l.r.ListRecent(ctx, limit)
}
