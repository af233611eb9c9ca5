// Package access holds the row-level rules shared by bookings and payments:
// admins see and touch everything, staff are confined to rows they own or
// rows that predate ownership tracking (created_by NULL).
package access

import (
	"errors"
	"strings"

	"rentaladmin/model"
)

var ErrNotOwner = errors.New("access restricted to owner")

// Principal is the authenticated actor, built from JWT claims per request
// and passed explicitly down the call chain.
type Principal struct {
	ID       int64
	Username string
	// Role is the comma-joined role list as carried in the token,
	// e.g. "ROLE_ADMIN, ROLE_STAFF".
	Role string
}

// IsAdmin is an ordered capability check: admin supersedes staff.
func (p *Principal) IsAdmin() bool {
	return p != nil && strings.Contains(p.Role, model.RoleAdmin)
}

// CanView implements the read-side rule for a single record.
func CanView(p *Principal, ownerID *int64) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if ownerID == nil {
		return true // legacy row without owner
	}
	return *ownerID == p.ID
}

// Authorize returns ErrNotOwner when the principal may not access the record.
func Authorize(p *Principal, ownerID *int64) error {
	if !CanView(p, ownerID) {
		return ErrNotOwner
	}
	return nil
}

// NeedsBackfill reports whether a staff write to this record must first
// claim ownership. The claim itself is an atomic guarded UPDATE executed by
// the repository inside the triggering transaction.
func NeedsBackfill(p *Principal, ownerID *int64) bool {
	return p != nil && !p.IsAdmin() && ownerID == nil
}
