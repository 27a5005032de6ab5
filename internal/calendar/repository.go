package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

type Repository interface {
	// Occupied returns every blocking range that overlaps r: confirmed
	// or pending bookings, blackout periods and external reservations.
	// All comparisons use half-open [start, end) semantics.
	Occupied(ctx context.Context, r daterange.Range) ([]Occupancy, error)

	CreateBlackout(ctx context.Context, b *BlackoutPeriod) error
	DeleteBlackout(ctx context.Context, id string) error
	ListBlackouts(ctx context.Context, window daterange.Range) ([]*BlackoutPeriod, error)

	ListExternalBySource(ctx context.Context, source string) ([]*ExternalReservation, error)
	InsertExternal(ctx context.Context, e *ExternalReservation) error
	DeleteExternal(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Occupied(ctx context.Context, rng daterange.Range) ([]Occupancy, error) {
	var out []Occupancy

	// Bookings: anything not cancelled blocks the dates.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "start_date", "end_date").
		From("public.bookings").
		Where(squirrel.NotEq{"status": "cancelled"}).
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build occupied bookings query failed: %w", err)
	}
	if err := r.scanOccupancies(ctx, query, args, KindBooking, "", &out); err != nil {
		return nil, err
	}

	// Blackout periods.
	query, args, err = psql.Select("id", "start_date", "end_date", "reason").
		From("public.blackout_periods").
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build occupied blackouts query failed: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blackouts failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o Occupancy
		o.Kind = KindBlackout
		if err := rows.Scan(&o.ID, &o.Range.Start, &o.Range.End, &o.Detail); err != nil {
			return nil, fmt.Errorf("scan blackout failed: %w", err)
		}
		out = append(out, o)
	}
	rows.Close()

	// External reservations.
	query, args, err = psql.Select("id", "start_date", "end_date", "source").
		From("public.external_reservations").
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build occupied externals query failed: %w", err)
	}
	rows, err = r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query external reservations failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o Occupancy
		o.Kind = KindExternal
		if err := rows.Scan(&o.ID, &o.Range.Start, &o.Range.End, &o.Detail); err != nil {
			return nil, fmt.Errorf("scan external reservation failed: %w", err)
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (r *pgxRepository) scanOccupancies(ctx context.Context, query string, args []any, kind OccupancyKind, detail string, out *[]Occupancy) error {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s occupancies failed: %w", kind, err)
	}
	defer rows.Close()
	for rows.Next() {
		o := Occupancy{Kind: kind, Detail: detail}
		if err := rows.Scan(&o.ID, &o.Range.Start, &o.Range.End); err != nil {
			return fmt.Errorf("scan %s occupancy failed: %w", kind, err)
		}
		*out = append(*out, o)
	}
	return rows.Err()
}

func (r *pgxRepository) CreateBlackout(ctx context.Context, b *BlackoutPeriod) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.blackout_periods").
		Columns("start_date", "end_date", "reason").
		Values(b.Range.Start, b.Range.End, b.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create blackout query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt)
}

func (r *pgxRepository) DeleteBlackout(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.blackout_periods").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete blackout query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete blackout failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListBlackouts(ctx context.Context, window daterange.Range) ([]*BlackoutPeriod, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "start_date", "end_date", "reason", "created_at").
		From("public.blackout_periods").
		OrderBy("start_date ASC")

	if !window.IsZero() {
		query = query.
			Where(squirrel.Lt{"start_date": window.End}).
			Where(squirrel.Gt{"end_date": window.Start})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blackouts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list blackouts failed: %w", err)
	}
	defer rows.Close()

	var result []*BlackoutPeriod
	for rows.Next() {
		var b BlackoutPeriod
		if err := rows.Scan(&b.ID, &b.Range.Start, &b.Range.End, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blackout failed: %w", err)
		}
		result = append(result, &b)
	}
	return result, rows.Err()
}

func (r *pgxRepository) ListExternalBySource(ctx context.Context, source string) ([]*ExternalReservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "source", "external_ref", "start_date", "end_date", "created_at").
		From("public.external_reservations").
		Where(squirrel.Eq{"source": source}).
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list external reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list external reservations failed: %w", err)
	}
	defer rows.Close()

	var result []*ExternalReservation
	for rows.Next() {
		var e ExternalReservation
		if err := rows.Scan(&e.ID, &e.Source, &e.ExternalRef, &e.Range.Start, &e.Range.End, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan external reservation failed: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

func (r *pgxRepository) InsertExternal(ctx context.Context, e *ExternalReservation) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.external_reservations").
		Columns("source", "external_ref", "start_date", "end_date").
		Values(e.Source, e.ExternalRef, e.Range.Start, e.Range.End).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert external reservation query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("insert external reservation failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) DeleteExternal(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.external_reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete external reservation query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete external reservation failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
