package service

import (
	"context"
	"net/url"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

type ProductService struct {
	repo  repository.ProductRepository
	audit auditor
	log   zerolog.Logger
}

func NewProductService(repo repository.ProductRepository, rec ActivityRecorder, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo:  repo,
		audit: auditor{rec: rec, resource: model.ResourceProduct},
		log:   log.With().Str("component", "product_service").Logger(),
	}
}

func (s *ProductService) List(ctx context.Context, query url.Values) ([]model.Product, filter.Page, error) {
	spec, err := filter.Parse(repository.ProductSchema, query)
	if err != nil {
		return nil, filter.Page{}, err
	}
	items, total, err := s.repo.List(ctx, spec, repository.ProductSchema)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return items, filter.NewPage(spec, total), nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	return p, translate(err)
}

func (s *ProductService) Create(ctx context.Context, actor Actor, req model.CreateProductRequest) (*model.Product, error) {
	p := &model.Product{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Brand:        req.Brand,
		ImageURL:     req.ImageURL,
		DisplayOrder: req.DisplayOrder,
		IsActive:     boolOr(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityCreate, p.ID, nil, p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, actor Actor, id string, req model.UpdateProductRequest) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	before := *p

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.DisplayOrder != nil {
		p.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityUpdate, p.ID, before, p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityDelete, id, p, nil)
	return nil
}
