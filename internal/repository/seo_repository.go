package repository

import (
	"context"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SEORepository handles per-page SEO settings.
type SEORepository interface {
	List(ctx context.Context, spec filter.Spec) ([]model.SEOSetting, int, error)
	GetByID(ctx context.Context, id string) (*model.SEOSetting, error)
	GetByPath(ctx context.Context, path string) (*model.SEOSetting, error)
	Create(ctx context.Context, s *model.SEOSetting) error
	Update(ctx context.Context, s *model.SEOSetting) error
	Delete(ctx context.Context, id string) error
}

type seoRepository struct {
	pool *pgxpool.Pool
}

// NewSEORepository creates a new SEORepository.
func NewSEORepository(pool *pgxpool.Pool) SEORepository {
	return &seoRepository{pool: pool}
}

const seoColumns = `id, page_path, title, description, keywords, og_image_url, canonical_url, no_index, is_active, created_at, updated_at`

func scanSEO(row pgx.Row) (model.SEOSetting, error) {
	var s model.SEOSetting
	err := row.Scan(&s.ID, &s.PagePath, &s.Title, &s.Description, &s.Keywords, &s.OGImageURL,
		&s.CanonicalURL, &s.NoIndex, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	return s, mapError(err)
}

func (r *seoRepository) List(ctx context.Context, spec filter.Spec) ([]model.SEOSetting, int, error) {
	return queryPage(ctx, r.pool, spec, SEOSchema, "seo_settings", seoColumns, scanSEO)
}

func (r *seoRepository) GetByID(ctx context.Context, id string) (*model.SEOSetting, error) {
	s, err := scanSEO(r.pool.QueryRow(ctx, `SELECT `+seoColumns+` FROM seo_settings WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByPath returns the active setting for a public page path.
func (r *seoRepository) GetByPath(ctx context.Context, path string) (*model.SEOSetting, error) {
	s, err := scanSEO(r.pool.QueryRow(ctx,
		`SELECT `+seoColumns+` FROM seo_settings WHERE page_path = $1 AND is_active`, path))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *seoRepository) Create(ctx context.Context, s *model.SEOSetting) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO seo_settings (page_path, title, description, keywords, og_image_url, canonical_url, no_index, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.PagePath, s.Title, s.Description, s.Keywords, s.OGImageURL, s.CanonicalURL, s.NoIndex, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

func (r *seoRepository) Update(ctx context.Context, s *model.SEOSetting) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE seo_settings
		 SET page_path = $1, title = $2, description = $3, keywords = $4, og_image_url = $5,
			canonical_url = $6, no_index = $7, is_active = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING updated_at`,
		s.PagePath, s.Title, s.Description, s.Keywords, s.OGImageURL, s.CanonicalURL, s.NoIndex, s.IsActive, s.ID,
	).Scan(&s.UpdatedAt)
	return mapError(err)
}

func (r *seoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM seo_settings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
