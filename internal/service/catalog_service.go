package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/ampvending/amp-backend/internal/catalog"
	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Source names where a public catalog response came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceStatic   Source = "static"
)

// CatalogService serves the public catalog from the database and falls back
// to the embedded static catalog when the database query fails.
type CatalogService struct {
	machines repository.MachineRepository
	products repository.ProductRepository
	static   *catalog.Static
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogService. A nil static catalog
// disables the fallback.
func NewCatalogService(machines repository.MachineRepository, products repository.ProductRepository, static *catalog.Static, m *metrics.Metrics, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		machines: machines,
		products: products,
		static:   static,
		metrics:  m,
		log:      log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListMachines returns active machines. Filter errors are never masked by the fallback.
func (s *CatalogService) ListMachines(ctx context.Context, query url.Values) ([]model.Machine, filter.Page, Source, error) {
	spec, err := filter.Parse(repository.PublicMachineSchema, query)
	if err != nil {
		return nil, filter.Page{}, "", err
	}

	items, total, err := s.machines.List(ctx, spec, repository.PublicMachineSchema)
	if err == nil {
		return items, filter.NewPage(spec, total), SourceDatabase, nil
	}
	if s.static == nil {
		return nil, filter.Page{}, "", err
	}

	s.fallback("machines", err)
	items, total = s.static.ListMachines(spec)
	return items, filter.NewPage(spec, total), SourceStatic, nil
}

// GetMachine returns an active machine by slug with its images. A machine
// the database does not know is ErrNotFound; the static catalog is only
// consulted when the database fails.
func (s *CatalogService) GetMachine(ctx context.Context, slug string) (*model.Machine, Source, error) {
	m, err := s.machines.GetBySlug(ctx, slug, true)
	if err == nil {
		images, imgErr := s.machines.ListImages(ctx, m.ID)
		if imgErr != nil {
			s.log.Warn().Err(imgErr).Str("slug", slug).Msg("Failed to load machine images")
		}
		m.Images = images
		return m, SourceDatabase, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if s.static == nil {
		return nil, "", err
	}

	s.fallback("machine", err)
	if m, ok := s.static.MachineBySlug(slug); ok {
		return m, SourceStatic, nil
	}
	return nil, "", ErrNotFound
}

// ListProducts returns active products.
func (s *CatalogService) ListProducts(ctx context.Context, query url.Values) ([]model.Product, filter.Page, Source, error) {
	spec, err := filter.Parse(repository.PublicProductSchema, query)
	if err != nil {
		return nil, filter.Page{}, "", err
	}

	items, total, err := s.products.List(ctx, spec, repository.PublicProductSchema)
	if err == nil {
		return items, filter.NewPage(spec, total), SourceDatabase, nil
	}
	if s.static == nil {
		return nil, filter.Page{}, "", err
	}

	s.fallback("products", err)
	items, total = s.static.ListProducts(spec)
	return items, filter.NewPage(spec, total), SourceStatic, nil
}

func (s *CatalogService) fallback(resource string, err error) {
	s.metrics.ObserveCatalogFallback(resource)
	s.log.Warn().Err(err).Str("resource", resource).Msg("Database unavailable, serving static catalog")
}
