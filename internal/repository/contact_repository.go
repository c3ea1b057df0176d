package repository

import (
	"context"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepository handles leads from the public forms.
type ContactRepository interface {
	List(ctx context.Context, spec filter.Spec) ([]model.Contact, int, error)
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	Create(ctx context.Context, c *model.Contact) error
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id string) error
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = `id, first_name, last_name, email, phone, company_name, message, source, status, notes, details, created_at, updated_at`

func scanContact(row pgx.Row) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CompanyName, &c.Message,
		&c.Source, &c.Status, &c.Notes, &c.Details, &c.CreatedAt, &c.UpdatedAt)
	return c, mapError(err)
}

func (r *contactRepository) List(ctx context.Context, spec filter.Spec) ([]model.Contact, int, error) {
	return queryPage(ctx, r.pool, spec, ContactSchema, "contacts", contactColumns, scanContact)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone, company_name, message, source, status, notes, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.CompanyName, c.Message, c.Source, c.Status, c.Notes, c.Details,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Update persists the admin-editable fields (status, notes).
func (r *contactRepository) Update(ctx context.Context, c *model.Contact) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE contacts SET status = $1, notes = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		c.Status, c.Notes, c.ID,
	).Scan(&c.UpdatedAt)
	return mapError(err)
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
