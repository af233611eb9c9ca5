package dashboard

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentaladmin/model"
	activitysvc "rentaladmin/service/activity"
)

type statsMock struct {
	revenue float64
}

func (m *statsMock) CountUsers(ctx context.Context) (int64, error) { return 5, nil }
func (m *statsMock) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	if role == model.RoleAdmin {
		return 2, nil
	}
	return 3, nil
}
func (m *statsMock) CountEquipment(ctx context.Context) (int64, error) { return 12, nil }
func (m *statsMock) CountBookings(ctx context.Context) (int64, error)  { return 30, nil }
func (m *statsMock) CountBookingsByStatus(ctx context.Context, status string) (int64, error) {
	if status == string(model.BookingActive) {
		return 20, nil
	}
	return 10, nil
}
func (m *statsMock) CountPayments(ctx context.Context) (int64, error)  { return 25, nil }
func (m *statsMock) TotalRevenue(ctx context.Context) (float64, error) { return m.revenue, nil }

type activityRepoMock struct {
	entries []model.ActivityLog
}

func (m *activityRepoMock) Insert(ctx context.Context, e *model.ActivityLog) error { return nil }
func (m *activityRepoMock) List(ctx context.Context, f activitysvc.Filter) ([]model.ActivityLog, error) {
	return m.entries, nil
}
func (m *activityRepoMock) ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func TestClassifyAction(t *testing.T) {
	cases := map[string]string{
		"BOOKING_CREATED":   "booking",
		"PAYMENT_UPDATED":   "payment",
		"USER_LOGIN":        "user",
		"USER_LOGOUT":       "user",
		"USER_DELETED":      "user",
		"EQUIPMENT_DELETED": "equipment",
		"SOMETHING_ELSE":    "general",
	}
	for action, want := range cases {
		require.Equal(t, want, ClassifyAction(action), action)
	}
}

func TestStats_Aggregates(t *testing.T) {
	data := "Booking ID: 3"
	audit := activitysvc.NewLogger(&activityRepoMock{
		entries: []model.ActivityLog{
			{ID: 1, Action: "BOOKING_CREATED", Username: "clerk", TargetData: &data, CreatedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)},
			{ID: 2, Action: "USER_LOGIN", Username: "boss", CreatedAt: time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)},
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc := New(&statsMock{revenue: 1234.5}, audit)

	out, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), out.TotalUsers)
	require.Equal(t, int64(2), out.AdminCount)
	require.Equal(t, int64(3), out.StaffCount)
	require.Equal(t, int64(12), out.TotalEquipment)
	require.Equal(t, int64(30), out.TotalBookings)
	require.Equal(t, int64(20), out.BookingsByStatus["active"])
	require.Equal(t, int64(10), out.BookingsByStatus["completed"])
	require.Equal(t, int64(25), out.TotalPayments)
	require.Equal(t, 1234.5, out.TotalRevenue)

	require.Len(t, out.RecentActivities, 2)
	require.Equal(t, "booking", out.RecentActivities[0].Type)
	require.Equal(t, "Booking ID: 3", out.RecentActivities[0].Details)
	require.Equal(t, "user", out.RecentActivities[1].Type)
	require.Equal(t, "2026-08-30 09:00:00", out.RecentActivities[0].When)
}
