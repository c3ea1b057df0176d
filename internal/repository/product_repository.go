package repository

import (
	"context"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository handles product data access.
type ProductRepository interface {
	List(ctx context.Context, spec filter.Spec, schema filter.Schema) ([]model.Product, int, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, p *model.Product) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, description, category, brand, image_url, display_order, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand, &p.ImageURL,
		&p.DisplayOrder, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, mapError(err)
}

func (r *productRepository) List(ctx context.Context, spec filter.Spec, schema filter.Schema) ([]model.Product, int, error) {
	return queryPage(ctx, r.pool, spec, schema, "products", productColumns, scanProduct)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, category, brand, image_url, display_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Category, p.Brand, p.ImageURL, p.DisplayOrder, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE products
		 SET name = $1, description = $2, category = $3, brand = $4, image_url = $5,
			display_order = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING updated_at`,
		p.Name, p.Description, p.Category, p.Brand, p.ImageURL, p.DisplayOrder, p.IsActive, p.ID,
	).Scan(&p.UpdatedAt)
	return mapError(err)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts or refreshes a product keyed by name.
func (r *productRepository) Upsert(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, category, brand, image_url, display_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description, category = EXCLUDED.category, brand = EXCLUDED.brand,
			image_url = EXCLUDED.image_url, display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Category, p.Brand, p.ImageURL, p.DisplayOrder, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}
