package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

// admissionLockKey seeds the advisory lock that serializes hold
// admission for the property across processes.
const admissionLockKey = int64(0x686f6c64) // "hold"

type Repository interface {
	// Create inserts an active hold. The pgx implementation runs the
	// insert in a transaction holding the property's advisory lock, so
	// admission stays linearized even with multiple server processes.
	// Overdue holds on the range are expired inside the same
	// transaction; the partial exclusion constraint on active holds is
	// the final backstop and maps to ErrRangeHeld.
	Create(ctx context.Context, h *Hold) error
	GetByID(ctx context.Context, id string) (*Hold, error)
	GetActiveBySession(ctx context.Context, sessionID string) (*Hold, error)
	// ActiveOverlapping returns live holds overlapping r, skipping
	// excludeID and anything already past its expiry.
	ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string, now time.Time) ([]*Hold, error)
	// SetStatus transitions an active hold; returns ErrNotFound when
	// the hold is missing or no longer active.
	SetStatus(ctx context.Context, id string, status Status) error
	// ExpireOverdue marks active holds past their expiry as expired
	// and returns how many were swept.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const holdColumns = "id, session_id, start_date, end_date, guest_count, coupon_code, status, expires_at, created_at"

func scanHold(row pgx.Row) (*Hold, error) {
	var h Hold
	if err := row.Scan(
		&h.ID, &h.SessionID, &h.Range.Start, &h.Range.End,
		&h.Guests, &h.CouponCode, &h.Status, &h.ExpiresAt, &h.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *pgxRepository) Create(ctx context.Context, h *Hold) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin hold tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize admission across processes for this property. The lock
	// is released automatically at commit/rollback.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", admissionLockKey); err != nil {
		return fmt.Errorf("acquire admission lock failed: %w", err)
	}

	// Sweep overdue holds on the requested range before inserting. An
	// expired hold keeps status 'active' until the reaper runs, and the
	// exclusion constraint only checks status, so without the sweep the
	// insert would collide with a hold the availability gate already
	// ignores.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	expire, expireArgs, err := psql.Update("public.holds").
		Set("status", StatusExpired).
		Where(squirrel.Eq{"status": StatusActive}).
		Where(squirrel.Expr("expires_at <= now()")).
		Where(squirrel.Lt{"start_date": h.Range.End}).
		Where(squirrel.Gt{"end_date": h.Range.Start}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build expire overlapping holds query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, expire, expireArgs...); err != nil {
		return fmt.Errorf("expire overlapping holds failed: %w", err)
	}

	query, args, err := psql.Insert("public.holds").
		Columns("session_id", "start_date", "end_date", "guest_count", "coupon_code", "status", "expires_at").
		Values(h.SessionID, h.Range.Start, h.Range.End, h.Guests, h.CouponCode, StatusActive, h.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create hold query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&h.ID, &h.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgerrcode.ExclusionViolation || pgErr.Code == pgerrcode.UniqueViolation) {
			return ErrRangeHeld
		}
		return fmt.Errorf("insert hold failed: %w", err)
	}
	h.Status = StatusActive

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit hold tx failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Hold, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(holdColumns).
		From("public.holds").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get hold query failed: %w", err)
	}

	h, err := scanHold(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hold failed: %w", err)
	}
	return h, nil
}

func (r *pgxRepository) GetActiveBySession(ctx context.Context, sessionID string) (*Hold, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(holdColumns).
		From("public.holds").
		Where(squirrel.Eq{"session_id": sessionID, "status": StatusActive}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get session hold query failed: %w", err)
	}

	h, err := scanHold(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session hold failed: %w", err)
	}
	return h, nil
}

func (r *pgxRepository) ActiveOverlapping(ctx context.Context, rng daterange.Range, excludeID string, now time.Time) ([]*Hold, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(holdColumns).
		From("public.holds").
		Where(squirrel.Eq{"status": StatusActive}).
		Where(squirrel.Gt{"expires_at": now}).
		Where(squirrel.Lt{"start_date": rng.End}).
		Where(squirrel.Gt{"end_date": rng.Start})

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlapping holds query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list overlapping holds failed: %w", err)
	}
	defer rows.Close()

	var result []*Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hold failed: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (r *pgxRepository) SetStatus(ctx context.Context, id string, status Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.holds").
		Set("status", status).
		Where(squirrel.Eq{"id": id, "status": StatusActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build hold status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update hold status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.holds").
		Set("status", StatusExpired).
		Where(squirrel.Eq{"status": StatusActive}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build expire holds query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire holds failed: %w", err)
	}
	return ct.RowsAffected(), nil
}
