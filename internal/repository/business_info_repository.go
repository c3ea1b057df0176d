package repository

import (
	"context"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BusinessInfoRepository stores the company profile as key/value rows.
type BusinessInfoRepository interface {
	GetAll(ctx context.Context) ([]model.BusinessInfo, error)
	UpsertMany(ctx context.Context, entries map[string]string) error
}

type businessInfoRepository struct {
	pool *pgxpool.Pool
}

// NewBusinessInfoRepository creates a new BusinessInfoRepository.
func NewBusinessInfoRepository(pool *pgxpool.Pool) BusinessInfoRepository {
	return &businessInfoRepository{pool: pool}
}

func (r *businessInfoRepository) GetAll(ctx context.Context) ([]model.BusinessInfo, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM business_info ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.BusinessInfo{}
	for rows.Next() {
		var e model.BusinessInfo
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertMany writes every entry in one transaction.
func (r *businessInfoRepository) UpsertMany(ctx context.Context, entries map[string]string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for key, value := range entries {
			batch.Queue(
				`INSERT INTO business_info (key, value, updated_at) VALUES ($1, $2, NOW())
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
				key, value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
