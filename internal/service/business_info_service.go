package service

import (
	"context"
	"sort"
	"strings"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

type BusinessInfoService struct {
	repo  repository.BusinessInfoRepository
	audit auditor
	log   zerolog.Logger
}

func NewBusinessInfoService(repo repository.BusinessInfoRepository, rec ActivityRecorder, log zerolog.Logger) *BusinessInfoService {
	return &BusinessInfoService{
		repo:  repo,
		audit: auditor{rec: rec, resource: model.ResourceBusinessInfo},
		log:   log.With().Str("component", "business_info_service").Logger(),
	}
}

// GetAll returns every stored entry as a key/value map.
func (s *BusinessInfoService) GetAll(ctx context.Context) (map[string]string, error) {
	entries, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get business info")
		return nil, err
	}

	info := make(map[string]string, len(entries))
	for _, e := range entries {
		info[e.Key] = e.Value
	}
	return info, nil
}

// Update writes the given entries in one transaction. Keys outside the
// allow-list reject the whole request.
func (s *BusinessInfoService) Update(ctx context.Context, actor Actor, entries map[string]string) (map[string]string, error) {
	var issues []FieldIssue
	clean := make(map[string]string, len(entries))
	for key, value := range entries {
		if !model.IsBusinessInfoKey(key) {
			issues = append(issues, FieldIssue{Field: "entries." + key, Message: "unknown business info key"})
			continue
		}
		clean[key] = strings.TrimSpace(value)
	}
	if len(issues) > 0 {
		sort.Slice(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
		return nil, &FieldsError{Fields: issues}
	}

	before, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertMany(ctx, clean); err != nil {
		s.log.Error().Err(err).Msg("failed to update business info")
		return nil, err
	}

	old := make(map[string]string, len(clean))
	for key := range clean {
		old[key] = before[key]
	}
	s.audit.record(ctx, actor, model.ActivityUpdate, "business_info", old, clean)

	for key, value := range clean {
		before[key] = value
	}
	return before, nil
}
