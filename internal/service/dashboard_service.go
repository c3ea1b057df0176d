package service

import (
	"context"
	"time"

	"github.com/ampvending/amp-backend/internal/model"
)

const (
	dashboardWindow = 30 * 24 * time.Hour
	recentContacts  = 5
)

// SummaryStore reads the dashboard counts.
type SummaryStore interface {
	GetSummary(ctx context.Context, since time.Time, recent int) (*model.DashboardSummary, error)
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo SummaryStore
	now  func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo SummaryStore) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// GetSummary returns catalog counts, leads by status and the email outcome
// of the last 30 days.
func (s *DashboardService) GetSummary(ctx context.Context) (*model.DashboardSummary, error) {
	summary, err := s.repo.GetSummary(ctx, s.now().Add(-dashboardWindow), recentContacts)
	if err != nil {
		return nil, err
	}
	for _, status := range model.ContactStatuses {
		if _, ok := summary.ContactsByStatus[status]; !ok {
			summary.ContactsByStatus[status] = 0
		}
	}
	return summary, nil
}
