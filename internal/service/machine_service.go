package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// ErrInvalidSlug is returned when no usable slug can be derived.
var ErrInvalidSlug = &FieldsError{Fields: []FieldIssue{{Field: "slug", Message: "must contain at least one letter or digit"}}}

// MachineService manages the machine catalog and its images.
type MachineService struct {
	repo   repository.MachineRepository
	audit  auditor
	images auditor
	log    zerolog.Logger
}

// NewMachineService creates a new MachineService.
func NewMachineService(repo repository.MachineRepository, rec ActivityRecorder, log zerolog.Logger) *MachineService {
	return &MachineService{
		repo:   repo,
		audit:  auditor{rec: rec, resource: model.ResourceMachine},
		images: auditor{rec: rec, resource: model.ResourceMachineImage},
		log:    log.With().Str("component", "machine_service").Logger(),
	}
}

// List returns one filtered page of machines.
func (s *MachineService) List(ctx context.Context, query url.Values) ([]model.Machine, filter.Page, error) {
	spec, err := filter.Parse(repository.MachineSchema, query)
	if err != nil {
		return nil, filter.Page{}, err
	}
	items, total, err := s.repo.List(ctx, spec, repository.MachineSchema)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return items, filter.NewPage(spec, total), nil
}

// GetByID returns a machine with its images.
func (s *MachineService) GetByID(ctx context.Context, id string) (*model.Machine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Images = images
	return m, nil
}

// Create inserts a machine. The slug is derived from the name when omitted.
func (s *MachineService) Create(ctx context.Context, actor Actor, req model.CreateMachineRequest) (*model.Machine, error) {
	source := req.Slug
	if source == "" {
		source = req.Name
	}
	machineSlug := slug.Make(source)
	if machineSlug == "" {
		return nil, ErrInvalidSlug
	}

	m := &model.Machine{
		Slug:             machineSlug,
		Name:             req.Name,
		Model:            req.Model,
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Features:         nonNilStrings(req.Features),
		Specifications:   nonNilSpecs(req.Specifications),
		DisplayOrder:     req.DisplayOrder,
		IsActive:         boolOr(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, translate(err)
	}

	s.audit.record(ctx, actor, model.ActivityCreate, m.ID, nil, m)
	return m, nil
}

// Update applies a partial update. Setting is_active=false is the soft delete.
func (s *MachineService) Update(ctx context.Context, actor Actor, id string, req model.UpdateMachineRequest) (*model.Machine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	before := *m

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Slug != nil {
		m.Slug = slug.Make(*req.Slug)
		if m.Slug == "" {
			return nil, ErrInvalidSlug
		}
	}
	if req.Model != nil {
		m.Model = *req.Model
	}
	if req.Category != nil {
		m.Category = *req.Category
	}
	if req.ShortDescription != nil {
		m.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Features != nil {
		m.Features = req.Features
	}
	if req.Specifications != nil {
		m.Specifications = req.Specifications
	}
	if req.DisplayOrder != nil {
		m.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, translate(err)
	}

	s.audit.record(ctx, actor, model.ActivityUpdate, m.ID, before, m)
	return m, nil
}

// Delete removes a machine and, by cascade, its images.
func (s *MachineService) Delete(ctx context.Context, actor Actor, id string) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityDelete, id, m, nil)
	return nil
}

// ─── Images ────────────────────────────────────────────────────────────

// ListImages returns the images of a machine, primary first.
func (s *MachineService) ListImages(ctx context.Context, machineID string) ([]model.MachineImage, error) {
	if _, err := s.repo.GetByID(ctx, machineID); err != nil {
		return nil, translate(err)
	}
	return s.repo.ListImages(ctx, machineID)
}

// AddImage attaches an uploaded image URL to a machine.
func (s *MachineService) AddImage(ctx context.Context, actor Actor, machineID string, req model.AddMachineImageRequest) (*model.MachineImage, error) {
	img := &model.MachineImage{
		MachineID:    machineID,
		URL:          req.URL,
		AltText:      req.AltText,
		IsPrimary:    req.IsPrimary,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.repo.AddImage(ctx, img); err != nil {
		return nil, translate(err)
	}
	s.images.record(ctx, actor, model.ActivityCreate, img.ID, nil, img)
	return img, nil
}

// DeleteImage removes one image of the machine.
func (s *MachineService) DeleteImage(ctx context.Context, actor Actor, machineID, imageID string) error {
	img, err := s.repo.DeleteImage(ctx, machineID, imageID)
	if err != nil {
		return translate(err)
	}
	s.images.record(ctx, actor, model.ActivityDelete, img.ID, img, nil)
	return nil
}

// SetPrimaryImage makes imageID the single primary image of the machine.
// An image belonging to another machine is ErrNotFound.
func (s *MachineService) SetPrimaryImage(ctx context.Context, actor Actor, machineID, imageID string) (*model.MachineImage, error) {
	img, err := s.repo.SetPrimaryImage(ctx, machineID, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrPrimaryInvariant) {
			s.log.Error().Err(err).Str("machine_id", machineID).Msg("Primary image invariant violated, rolled back")
		}
		return nil, translate(err)
	}
	s.images.record(ctx, actor, model.ActivityUpdate, img.ID, nil, map[string]any{"is_primary": true})
	return img, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilSpecs(v map[string]string) map[string]string {
	if v == nil {
		return map[string]string{}
	}
	return v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
