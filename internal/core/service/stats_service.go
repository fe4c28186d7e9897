package service

import (
	"context"
	"fmt"
	"time"

	"github.com/clientespro/client-manager/internal/core/ports"
)

// StatsService computes admin dashboards. Months follow the calendar of the
// clock's location.
type StatsService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
	now     func() time.Time
}

// NewStatsService returns a StatsService. A nil clock uses time.Now, so the
// month window follows the server's local time zone.
func NewStatsService(clients ports.ClientRepository, users ports.UserRepository, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{clients: clients, users: users, now: now}
}

var _ ports.StatsService = (*StatsService)(nil)

func (s *StatsService) ClientStats(ctx context.Context) (*ports.ClientStats, error) {
	total, err := s.clients.Count(ctx, ports.ClientCountFilter{})
	if err != nil {
		return nil, fmt.Errorf("client stats: total: %w", err)
	}

	from, before := monthWindow(s.now())
	fresh, err := s.clients.Count(ctx, ports.ClientCountFilter{CreatedFrom: from, CreatedBefore: before})
	if err != nil {
		return nil, fmt.Errorf("client stats: this month: %w", err)
	}

	byStatus, err := s.clients.CountBy(ctx, "", ports.GroupByStatus)
	if err != nil {
		return nil, fmt.Errorf("client stats: by status: %w", err)
	}

	return &ports.ClientStats{
		TotalClients:        total,
		NewClientsThisMonth: fresh,
		ClientsByStatus:     byStatus,
	}, nil
}

func (s *StatsService) UserStats(ctx context.Context) (*ports.UserStats, error) {
	counts, err := s.users.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &ports.UserStats{
		TotalUsers:  counts.Total,
		ActiveUsers: counts.Active,
		AdminUsers:  counts.Admins,
	}, nil
}

// monthWindow returns [first instant of now's month, first instant of the next).
func monthWindow(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}
