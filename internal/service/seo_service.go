package service

import (
	"context"
	"net/url"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

// SEOService manages per-page metadata. page_path is unique.
type SEOService struct {
	repo  repository.SEORepository
	audit auditor
	log   zerolog.Logger
}

func NewSEOService(repo repository.SEORepository, rec ActivityRecorder, log zerolog.Logger) *SEOService {
	return &SEOService{
		repo:  repo,
		audit: auditor{rec: rec, resource: model.ResourceSEOSetting},
		log:   log.With().Str("component", "seo_service").Logger(),
	}
}

func (s *SEOService) List(ctx context.Context, query url.Values) ([]model.SEOSetting, filter.Page, error) {
	spec, err := filter.Parse(repository.SEOSchema, query)
	if err != nil {
		return nil, filter.Page{}, err
	}
	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return items, filter.NewPage(spec, total), nil
}

func (s *SEOService) GetByID(ctx context.Context, id string) (*model.SEOSetting, error) {
	setting, err := s.repo.GetByID(ctx, id)
	return setting, translate(err)
}

// GetByPath returns the active metadata for a public page.
func (s *SEOService) GetByPath(ctx context.Context, path string) (*model.SEOSetting, error) {
	setting, err := s.repo.GetByPath(ctx, path)
	return setting, translate(err)
}

func (s *SEOService) Create(ctx context.Context, actor Actor, req model.CreateSEOSettingRequest) (*model.SEOSetting, error) {
	setting := &model.SEOSetting{
		PagePath:     req.PagePath,
		Title:        req.Title,
		Description:  req.Description,
		Keywords:     nonNilStrings(req.Keywords),
		OGImageURL:   req.OGImageURL,
		CanonicalURL: req.CanonicalURL,
		NoIndex:      req.NoIndex,
		IsActive:     boolOr(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityCreate, setting.ID, nil, setting)
	return setting, nil
}

func (s *SEOService) Update(ctx context.Context, actor Actor, id string, req model.UpdateSEOSettingRequest) (*model.SEOSetting, error) {
	setting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	before := *setting

	if req.PagePath != nil {
		setting.PagePath = *req.PagePath
	}
	if req.Title != nil {
		setting.Title = *req.Title
	}
	if req.Description != nil {
		setting.Description = *req.Description
	}
	if req.Keywords != nil {
		setting.Keywords = req.Keywords
	}
	if req.OGImageURL != nil {
		setting.OGImageURL = req.OGImageURL
	}
	if req.CanonicalURL != nil {
		setting.CanonicalURL = req.CanonicalURL
	}
	if req.NoIndex != nil {
		setting.NoIndex = *req.NoIndex
	}
	if req.IsActive != nil {
		setting.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, setting); err != nil {
		return nil, translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityUpdate, setting.ID, before, setting)
	return setting, nil
}

func (s *SEOService) Delete(ctx context.Context, actor Actor, id string) error {
	setting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityDelete, id, setting, nil)
	return nil
}
