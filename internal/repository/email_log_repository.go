package repository

import (
	"context"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailLogRepository records outgoing emails.
type EmailLogRepository interface {
	Create(ctx context.Context, l *model.EmailLog) error
	List(ctx context.Context, spec filter.Spec) ([]model.EmailLog, int, error)
}

type emailLogRepository struct {
	pool *pgxpool.Pool
}

// NewEmailLogRepository creates a new EmailLogRepository.
func NewEmailLogRepository(pool *pgxpool.Pool) EmailLogRepository {
	return &emailLogRepository{pool: pool}
}

const emailLogColumns = `id, contact_id, recipient, subject, body, status, error, provider_id, sent_by, created_at`

func scanEmailLog(row pgx.Row) (model.EmailLog, error) {
	var l model.EmailLog
	err := row.Scan(&l.ID, &l.ContactID, &l.Recipient, &l.Subject, &l.Body, &l.Status,
		&l.Error, &l.ProviderID, &l.SentBy, &l.CreatedAt)
	return l, mapError(err)
}

func (r *emailLogRepository) Create(ctx context.Context, l *model.EmailLog) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO email_logs (contact_id, recipient, subject, body, status, error, provider_id, sent_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		l.ContactID, l.Recipient, l.Subject, l.Body, l.Status, l.Error, l.ProviderID, l.SentBy,
	).Scan(&l.ID, &l.CreatedAt)
	return mapError(err)
}

func (r *emailLogRepository) List(ctx context.Context, spec filter.Spec) ([]model.EmailLog, int, error) {
	return queryPage(ctx, r.pool, spec, EmailLogSchema, "email_logs", emailLogColumns, scanEmailLog)
}
