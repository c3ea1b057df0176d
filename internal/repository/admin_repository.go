package repository

import (
	"context"
	"strings"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository is the credential store for back-office accounts.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
	RecordLogin(ctx context.Context, id string, avatarURL *string) error
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

const adminColumns = `id, email, name, role, is_active, password_hash, avatar_url, last_login_at, created_at, updated_at`

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	a := &model.Admin{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.IsActive, &a.PasswordHash,
		&a.AvatarURL, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (r *adminRepository) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id))
}

// GetByEmail retrieves an admin by email, case-insensitively.
func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admin_users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
}

// Create inserts a new admin. The email is stored lower-cased.
func (r *adminRepository) Create(ctx context.Context, a *model.Admin) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admin_users (email, name, role, is_active, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.Role, a.IsActive, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapError(err)
}

// RecordLogin stamps last_login_at and, when given, refreshes the avatar.
func (r *adminRepository) RecordLogin(ctx context.Context, id string, avatarURL *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admin_users
		 SET last_login_at = NOW(), avatar_url = COALESCE($2, avatar_url), updated_at = NOW()
		 WHERE id = $1`, id, avatarURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
