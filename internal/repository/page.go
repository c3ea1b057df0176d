package repository

import (
	"context"
	"time"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryPage runs the count and page statements for one filtered list.
func queryPage[T any](
	ctx context.Context,
	pool *pgxpool.Pool,
	spec filter.Spec,
	schema filter.Schema,
	from, columns string,
	scan func(row pgx.Row) (T, error),
) ([]T, int, error) {
	q, err := filter.Build(spec, schema)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs := q.Count(from)
	var total int
	if err := pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, spec.Limit())
	if total == 0 || spec.Offset() >= total {
		return items, total, nil
	}

	selectSQL, args := q.Select(from, columns)
	rows, err := pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
