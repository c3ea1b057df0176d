package repository

import (
	"context"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLogRepository is the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, l *model.ActivityLog) error
	List(ctx context.Context, spec filter.Spec) ([]model.ActivityLog, int, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository creates a new ActivityLogRepository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

const activityColumns = `l.id, l.admin_id, COALESCE(a.email, ''), l.action, l.resource_type, l.resource_id,
	l.old_values, l.new_values, COALESCE(l.ip_address, ''), l.created_at`

func scanActivity(row pgx.Row) (model.ActivityLog, error) {
	var l model.ActivityLog
	err := row.Scan(&l.ID, &l.AdminID, &l.AdminEmail, &l.Action, &l.ResourceType, &l.ResourceID,
		&l.OldValues, &l.NewValues, &l.IPAddress, &l.CreatedAt)
	return l, mapError(err)
}

// Create appends an entry. A zero CreatedAt is filled by the database.
func (r *activityLogRepository) Create(ctx context.Context, l *model.ActivityLog) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO activity_logs (admin_id, action, resource_type, resource_id, old_values, new_values, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), COALESCE($8, NOW()))
		 RETURNING id, created_at`,
		l.AdminID, l.Action, l.ResourceType, l.ResourceID, l.OldValues, l.NewValues, l.IPAddress, nullTime(l.CreatedAt),
	).Scan(&l.ID, &l.CreatedAt)
	return mapError(err)
}

func (r *activityLogRepository) List(ctx context.Context, spec filter.Spec) ([]model.ActivityLog, int, error) {
	return queryPage(ctx, r.pool, spec, ActivitySchema,
		"activity_logs l LEFT JOIN admin_users a ON a.id = l.admin_id", activityColumns, scanActivity)
}
