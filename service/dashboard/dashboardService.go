package dashboard

import (
	"context"
	"strings"

	"rentaladmin/model"
	"rentaladmin/repository/stats"
	activitysvc "rentaladmin/service/activity"
)

const recentActivityLimit = 10

type RecentActivity struct {
	ID       int64  `json:"id"`
	Action   string `json:"action"`
	Type     string `json:"type"`
	Username string `json:"username"`
	Details  string `json:"details"`
	When     string `json:"when"`
}

type Stats struct {
	TotalUsers        int64            `json:"total_users"`
	AdminCount        int64            `json:"admin_count"`
	StaffCount        int64            `json:"staff_count"`
	TotalEquipment    int64            `json:"total_equipment"`
	TotalBookings     int64            `json:"total_bookings"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	TotalPayments     int64            `json:"total_payments"`
	TotalRevenue      float64          `json:"total_revenue"`
	RecentActivities  []RecentActivity `json:"recent_activities"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	stats    stats.Repo
	activity *activitysvc.Logger
}

func New(statsRepo stats.Repo, activity *activitysvc.Logger) Service {
	return &service{stats: statsRepo, activity: activity}
}

// ClassifyAction buckets an audit action into a feed category by keyword.
func ClassifyAction(action string) string {
	a := strings.ToLower(action)
	switch {
	case strings.Contains(a, "booking"):
		return "booking"
	case strings.Contains(a, "payment"):
		return "payment"
	case strings.Contains(a, "user") || strings.Contains(a, "login") || strings.Contains(a, "logout"):
		return "user"
	case strings.Contains(a, "equipment"):
		return "equipment"
	default:
		return "general"
	}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{BookingsByStatus: map[string]int64{}}

	var err error
	if out.TotalUsers, err = s.stats.CountUsers(ctx); err != nil {
		return nil, err
	}
	if out.AdminCount, err = s.stats.CountUsersByRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}
	if out.StaffCount, err = s.stats.CountUsersByRole(ctx, model.RoleStaff); err != nil {
		return nil, err
	}
	if out.TotalEquipment, err = s.stats.CountEquipment(ctx); err != nil {
		return nil, err
	}
	if out.TotalBookings, err = s.stats.CountBookings(ctx); err != nil {
		return nil, err
	}
	for _, st := range []model.BookingStatus{model.BookingActive, model.BookingCompleted} {
		n, err := s.stats.CountBookingsByStatus(ctx, string(st))
		if err != nil {
			return nil, err
		}
		out.BookingsByStatus[string(st)] = n
	}
	if out.TotalPayments, err = s.stats.CountPayments(ctx); err != nil {
		return nil, err
	}
	if out.TotalRevenue, err = s.stats.TotalRevenue(ctx); err != nil {
		return nil, err
	}

	entries, err := s.activity.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	out.RecentActivities = make([]RecentActivity, 0, len(entries))
	for _, e := range entries {
		item := RecentActivity{
			ID:       e.ID,
			Action:   e.Action,
			Type:     ClassifyAction(e.Action),
			Username: e.Username,
			When:     e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if e.TargetData != nil {
			item.Details = *e.TargetData
		}
		out.RecentActivities = append(out.RecentActivities, item)
	}
	return out, nil
}
