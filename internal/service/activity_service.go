package service

import (
	"context"
	"net/url"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
)

// ActivityService reads the audit trail. Entries are only ever written by
// the activity recorder and worker.
type ActivityService struct {
	repo repository.ActivityLogRepository
}

func NewActivityService(repo repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) List(ctx context.Context, query url.Values) ([]model.ActivityLog, filter.Page, error) {
	spec, err := filter.Parse(repository.ActivitySchema, query)
	if err != nil {
		return nil, filter.Page{}, err
	}
	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return items, filter.NewPage(spec, total), nil
}
