package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	List(ctx context.Context, filter Filter) ([]*Alert, int, error)
	Resolve(ctx context.Context, id string) error
	// HasOpenOverlapping reports whether an unresolved alert of the
	// given kind covers any night of r.
	HasOpenOverlapping(ctx context.Context, kind Kind, r daterange.Range) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, a *Alert) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.alerts").
		Columns("kind", "message", "start_date", "end_date").
		Values(a.Kind, a.Message, a.Range.Start, a.Range.End).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create alert query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt)
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Alert, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "kind", "message", "start_date", "end_date", "resolved", "created_at", "count(*) OVER() as total_count").
		From("public.alerts")

	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.Unresolved {
		query = query.Where(squirrel.Eq{"resolved": false})
	}

	query = query.OrderBy("created_at DESC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list alerts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list alerts failed: %w", err)
	}
	defer rows.Close()

	var result []*Alert
	var total int

	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.ID, &a.Kind, &a.Message, &a.Range.Start, &a.Range.End, &a.Resolved, &a.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan alert failed: %w", err)
		}
		result = append(result, &a)
	}

	return result, total, rows.Err()
}

func (r *pgxRepository) Resolve(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.alerts").
		Set("resolved", true).
		Set("resolved_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build resolve alert query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve alert failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasOpenOverlapping(ctx context.Context, kind Kind, rng daterange.Range) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.alerts").
		Where(squirrel.Eq{"kind": kind, "resolved": false}).
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start})

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build open alert query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check open alert failed: %w", err)
	}
	return exists, nil
}
