package access

import (
	"testing"

	"rentaladmin/model"
)

func ptr(v int64) *int64 { return &v }

func TestIsAdmin(t *testing.T) {
	cases := []struct {
		name string
		p    *Principal
		want bool
	}{
		{"nil principal", nil, false},
		{"staff only", &Principal{Role: model.RoleStaff}, false},
		{"admin only", &Principal{Role: model.RoleAdmin}, true},
		{"both roles", &Principal{Role: model.RoleAdmin + ", " + model.RoleStaff}, true},
		{"empty role", &Principal{}, false},
	}
	for _, tc := range cases {
		if got := tc.p.IsAdmin(); got != tc.want {
			t.Errorf("%s: IsAdmin() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanView(t *testing.T) {
	admin := &Principal{ID: 1, Role: model.RoleAdmin}
	staff := &Principal{ID: 2, Role: model.RoleStaff}

	cases := []struct {
		name  string
		p     *Principal
		owner *int64
		want  bool
	}{
		{"admin sees owned by other", admin, ptr(99), true},
		{"admin sees legacy", admin, nil, true},
		{"staff sees own", staff, ptr(2), true},
		{"staff sees legacy", staff, nil, true},
		{"staff blocked from other", staff, ptr(3), false},
		{"nil principal blocked", nil, nil, false},
	}
	for _, tc := range cases {
		if got := CanView(tc.p, tc.owner); got != tc.want {
			t.Errorf("%s: CanView = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAuthorize(t *testing.T) {
	staff := &Principal{ID: 2, Role: model.RoleStaff}

	if err := Authorize(staff, ptr(2)); err != nil {
		t.Fatalf("own record: %v", err)
	}
	if err := Authorize(staff, ptr(3)); err != ErrNotOwner {
		t.Fatalf("other's record: got %v, want ErrNotOwner", err)
	}
}

func TestNeedsBackfill(t *testing.T) {
	admin := &Principal{ID: 1, Role: model.RoleAdmin}
	staff := &Principal{ID: 2, Role: model.RoleStaff}

	// only a staff write to a legacy row claims ownership
	if !NeedsBackfill(staff, nil) {
		t.Error("staff on legacy row should backfill")
	}
	if NeedsBackfill(admin, nil) {
		t.Error("admin must never claim ownership")
	}
	if NeedsBackfill(staff, ptr(2)) {
		t.Error("owned row needs no backfill")
	}
	if NeedsBackfill(nil, nil) {
		t.Error("nil principal cannot backfill")
	}
}
