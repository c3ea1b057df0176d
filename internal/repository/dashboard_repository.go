package repository

import (
	"context"
	"time"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummary collects the headline counts shown on the dashboard.
func (r *DashboardRepository) GetSummary(ctx context.Context, since time.Time, recent int) (*model.DashboardSummary, error) {
	s := &model.DashboardSummary{ContactsByStatus: map[string]int{}}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM machines WHERE is_active),
			(SELECT COUNT(*) FROM machines),
			(SELECT COUNT(*) FROM products WHERE is_active),
			(SELECT COUNT(*) FROM contacts WHERE created_at >= $1),
			(SELECT COUNT(*) FROM email_logs WHERE status = 'sent' AND created_at >= $1),
			(SELECT COUNT(*) FROM email_logs WHERE status = 'failed' AND created_at >= $1)`,
		since,
	).Scan(&s.ActiveMachines, &s.TotalMachines, &s.ActiveProducts, &s.NewContacts30d, &s.EmailsSent30d, &s.EmailsFailed30d)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		s.ContactsByStatus[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC, id DESC LIMIT $1`, recent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.RecentContacts = []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		s.RecentContacts = append(s.RecentContacts, c)
	}
	return s, rows.Err()
}
