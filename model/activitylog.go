// model/activitylog.go
package model

import "time"

// ActivityLog is append-only. Actor identity is denormalized at write time
// so entries stay meaningful after the user row is deleted.
type ActivityLog struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"`
	Username   string    `json:"username"`
	UserRole   string    `json:"user_role"`
	Action     string    `json:"action"`
	TargetData *string   `json:"target_data,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
