package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPrimaryInvariant means a machine would end a transaction without exactly one primary image.
var ErrPrimaryInvariant = errors.New("machine must have exactly one primary image")

// MachineRepository handles machines and their images.
type MachineRepository interface {
	List(ctx context.Context, spec filter.Spec, schema filter.Schema) ([]model.Machine, int, error)
	GetByID(ctx context.Context, id string) (*model.Machine, error)
	GetBySlug(ctx context.Context, slug string, activeOnly bool) (*model.Machine, error)
	Create(ctx context.Context, m *model.Machine) error
	Update(ctx context.Context, m *model.Machine) error
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, m *model.Machine) error

	ListImages(ctx context.Context, machineID string) ([]model.MachineImage, error)
	AddImage(ctx context.Context, img *model.MachineImage) error
	DeleteImage(ctx context.Context, machineID, imageID string) (*model.MachineImage, error)
	SetPrimaryImage(ctx context.Context, machineID, imageID string) (*model.MachineImage, error)
}

type machineRepository struct {
	pool *pgxpool.Pool
}

// NewMachineRepository creates a new MachineRepository.
func NewMachineRepository(pool *pgxpool.Pool) MachineRepository {
	return &machineRepository{pool: pool}
}

const machineColumns = `m.id, m.slug, m.name, m.model, m.category, m.short_description, m.description,
	m.features, m.specifications, m.display_order, m.is_active,
	(SELECT i.url FROM machine_images i WHERE i.machine_id = m.id AND i.is_primary) AS primary_image_url,
	m.created_at, m.updated_at`

const imageColumns = `id, machine_id, url, alt_text, is_primary, display_order, created_at`

func scanMachine(row pgx.Row) (model.Machine, error) {
	var m model.Machine
	err := row.Scan(&m.ID, &m.Slug, &m.Name, &m.Model, &m.Category, &m.ShortDescription, &m.Description,
		&m.Features, &m.Specifications, &m.DisplayOrder, &m.IsActive, &m.PrimaryImageURL,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return m, mapError(err)
	}
	if m.Features == nil {
		m.Features = []string{}
	}
	if m.Specifications == nil {
		m.Specifications = map[string]string{}
	}
	return m, nil
}

func scanImage(row pgx.Row) (model.MachineImage, error) {
	var img model.MachineImage
	err := row.Scan(&img.ID, &img.MachineID, &img.URL, &img.AltText, &img.IsPrimary, &img.DisplayOrder, &img.CreatedAt)
	return img, mapError(err)
}

func (r *machineRepository) List(ctx context.Context, spec filter.Spec, schema filter.Schema) ([]model.Machine, int, error) {
	return queryPage(ctx, r.pool, spec, schema, "machines m", machineColumns, scanMachine)
}

func (r *machineRepository) GetByID(ctx context.Context, id string) (*model.Machine, error) {
	m, err := scanMachine(r.pool.QueryRow(ctx, `SELECT `+machineColumns+` FROM machines m WHERE m.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*model.Machine, error) {
	m, err := scanMachine(r.pool.QueryRow(ctx,
		`SELECT `+machineColumns+` FROM machines m WHERE m.slug = $1 AND (m.is_active OR NOT $2)`,
		slug, activeOnly))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepository) Create(ctx context.Context, m *model.Machine) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO machines (slug, name, model, category, short_description, description,
			features, specifications, display_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		m.Slug, m.Name, m.Model, m.Category, m.ShortDescription, m.Description,
		m.Features, m.Specifications, m.DisplayOrder, m.IsActive,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapError(err)
}

func (r *machineRepository) Update(ctx context.Context, m *model.Machine) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE machines
		 SET slug = $1, name = $2, model = $3, category = $4, short_description = $5, description = $6,
			features = $7, specifications = $8, display_order = $9, is_active = $10, updated_at = NOW()
		 WHERE id = $11
		 RETURNING updated_at`,
		m.Slug, m.Name, m.Model, m.Category, m.ShortDescription, m.Description,
		m.Features, m.Specifications, m.DisplayOrder, m.IsActive, m.ID,
	).Scan(&m.UpdatedAt)
	return mapError(err)
}

func (r *machineRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM machines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts or refreshes a machine keyed by slug.
func (r *machineRepository) Upsert(ctx context.Context, m *model.Machine) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO machines (slug, name, model, category, short_description, description,
			features, specifications, display_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, model = EXCLUDED.model, category = EXCLUDED.category,
			short_description = EXCLUDED.short_description, description = EXCLUDED.description,
			features = EXCLUDED.features, specifications = EXCLUDED.specifications,
			display_order = EXCLUDED.display_order, is_active = EXCLUDED.is_active, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		m.Slug, m.Name, m.Model, m.Category, m.ShortDescription, m.Description,
		m.Features, m.Specifications, m.DisplayOrder, m.IsActive,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapError(err)
}

// ─── Images ────────────────────────────────────────────────────────────

func (r *machineRepository) ListImages(ctx context.Context, machineID string) ([]model.MachineImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM machine_images
		 WHERE machine_id = $1 ORDER BY is_primary DESC, display_order ASC, created_at ASC`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []model.MachineImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// AddImage inserts an image. The first image of a machine always becomes primary;
// a later image flagged primary takes the flag over in the same transaction.
func (r *machineRepository) AddImage(ctx context.Context, img *model.MachineImage) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockMachine(ctx, tx, img.MachineID); err != nil {
			return err
		}

		var primaries int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM machine_images WHERE machine_id = $1 AND is_primary`, img.MachineID,
		).Scan(&primaries); err != nil {
			return err
		}
		if primaries == 0 {
			img.IsPrimary = true
		}
		if img.IsPrimary && primaries > 0 {
			if _, err := tx.Exec(ctx,
				`UPDATE machine_images SET is_primary = FALSE WHERE machine_id = $1 AND is_primary`, img.MachineID,
			); err != nil {
				return err
			}
		}

		err := tx.QueryRow(ctx,
			`INSERT INTO machine_images (machine_id, url, alt_text, is_primary, display_order)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			img.MachineID, img.URL, img.AltText, img.IsPrimary, img.DisplayOrder,
		).Scan(&img.ID, &img.CreatedAt)
		if err != nil {
			return mapError(err)
		}
		return verifySinglePrimary(ctx, tx, img.MachineID)
	})
}

// DeleteImage removes an image of the machine. Deleting the primary image
// promotes the next image in display order.
func (r *machineRepository) DeleteImage(ctx context.Context, machineID, imageID string) (*model.MachineImage, error) {
	var deleted model.MachineImage
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockMachine(ctx, tx, machineID); err != nil {
			return err
		}

		var err error
		deleted, err = scanImage(tx.QueryRow(ctx,
			`DELETE FROM machine_images WHERE id = $1 AND machine_id = $2 RETURNING `+imageColumns,
			imageID, machineID))
		if err != nil {
			return err
		}
		if !deleted.IsPrimary {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE machine_images SET is_primary = TRUE
			 WHERE id = (SELECT id FROM machine_images WHERE machine_id = $1
			             ORDER BY display_order ASC, created_at ASC LIMIT 1)`, machineID,
		); err != nil {
			return err
		}
		return verifySinglePrimary(ctx, tx, machineID)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// SetPrimaryImage swaps the primary flag to imageID atomically. The machine
// row is locked so concurrent swaps serialize, and the partial unique index
// on (machine_id) WHERE is_primary backs the invariant at the store.
func (r *machineRepository) SetPrimaryImage(ctx context.Context, machineID, imageID string) (*model.MachineImage, error) {
	var img model.MachineImage
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockMachine(ctx, tx, machineID); err != nil {
			return err
		}

		var owned bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM machine_images WHERE id = $1 AND machine_id = $2)`,
			imageID, machineID,
		).Scan(&owned); err != nil {
			return err
		}
		if !owned {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx,
			`UPDATE machine_images SET is_primary = FALSE
			 WHERE machine_id = $1 AND is_primary AND id <> $2`, machineID, imageID,
		); err != nil {
			return err
		}

		var err error
		img, err = scanImage(tx.QueryRow(ctx,
			`UPDATE machine_images SET is_primary = TRUE WHERE id = $1 RETURNING `+imageColumns, imageID))
		if err != nil {
			return err
		}
		return verifySinglePrimary(ctx, tx, machineID)
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func lockMachine(ctx context.Context, tx pgx.Tx, machineID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM machines WHERE id = $1 FOR UPDATE`, machineID).Scan(&id)
	return mapError(err)
}

// verifySinglePrimary fails the transaction unless the machine has exactly one
// primary image (or no images at all).
func verifySinglePrimary(ctx context.Context, tx pgx.Tx, machineID string) error {
	var images, primaries int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_primary) FROM machine_images WHERE machine_id = $1`,
		machineID,
	).Scan(&images, &primaries)
	if err != nil {
		return err
	}
	if images > 0 && primaries != 1 {
		return fmt.Errorf("%w: machine %s has %d", ErrPrimaryInvariant, machineID, primaries)
	}
	return nil
}
