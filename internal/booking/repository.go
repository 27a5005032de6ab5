package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinecove/rental-booking-backend/internal/hold"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

type Repository interface {
	// Finalize atomically consumes the hold, inserts the booking as
	// confirmed and redeems the coupon, all in one transaction. This
	// is the single moment racing checkout attempts become append-only
	// calendar history.
	Finalize(ctx context.Context, b *Booking, holdID, couponCode string) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Cancel(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Finalize(ctx context.Context, b *Booking, holdID, couponCode string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin finalize tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Consume the hold, but only while it is still active and
	// unexpired. Zero rows means it was reaped, released or already
	// consumed in the meantime.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.holds").
		Set("status", hold.StatusConsumed).
		Where(squirrel.Eq{"id": holdID, "status": hold.StatusActive}).
		Where(squirrel.Gt{"expires_at": time.Now()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume hold query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("consume hold failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return r.classifyHoldFailure(ctx, holdID)
	}

	// 2. Insert the confirmed booking. The exclusion constraint on
	// non-cancelled bookings is the storage-level overbooking backstop.
	breakdown, err := json.Marshal(b.Breakdown)
	if err != nil {
		return fmt.Errorf("encode price breakdown failed: %w", err)
	}

	query, args, err = psql.Insert("public.bookings").
		Columns("start_date", "end_date", "guest_name", "guest_email", "guest_count", "status", "price_breakdown", "payment_ref").
		Values(b.Range.Start, b.Range.End, b.GuestName, b.GuestEmail, b.GuestCount, b.Status, breakdown, b.PaymentRef).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrRangeTaken
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}

	// 3. Redeem the coupon, if the hold carried one. Usage constraints
	// are enforced here so two finalizes cannot both spend the last use.
	if couponCode != "" {
		query, args, err = psql.Update("public.coupons").
			Set("used_count", squirrel.Expr("used_count + 1")).
			Where(squirrel.Eq{"code": couponCode}).
			Where(squirrel.Expr("(max_uses = 0 OR used_count < max_uses)")).
			ToSql()
		if err != nil {
			return fmt.Errorf("build redeem coupon query failed: %w", err)
		}
		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("redeem coupon failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return pricing.ErrCouponExhausted
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit finalize tx failed: %w", err)
	}
	return nil
}

// classifyHoldFailure distinguishes a missing hold from an expired or
// already-spent one so the UI can explain a timeout rather than a
// generic conflict.
func (r *pgxRepository) classifyHoldFailure(ctx context.Context, holdID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("status").
		From("public.holds").
		Where(squirrel.Eq{"id": holdID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build hold status query failed: %w", err)
	}

	var status string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrHoldNotFound
		}
		return fmt.Errorf("get hold status failed: %w", err)
	}
	return ErrHoldExpired
}

const bookingColumns = "id, start_date, end_date, guest_name, guest_email, guest_count, status, price_breakdown, payment_ref, created_at, updated_at"

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b   Booking
		raw []byte
	)
	if err := row.Scan(
		&b.ID, &b.Range.Start, &b.Range.End, &b.GuestName, &b.GuestEmail,
		&b.GuestCount, &b.Status, &raw, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		b.Breakdown = &pricing.Breakdown{}
		if err := json.Unmarshal(raw, b.Breakdown); err != nil {
			return nil, fmt.Errorf("decode price breakdown failed: %w", err)
		}
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns + ", count(*) OVER() as total_count").
		From("public.bookings").
		OrderBy("start_date DESC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		result []*Booking
		total  int
		raw    []byte
	)
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.Range.Start, &b.Range.End, &b.GuestName, &b.GuestEmail,
			&b.GuestCount, &b.Status, &raw, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		if len(raw) > 0 {
			b.Breakdown = &pricing.Breakdown{}
			if err := json.Unmarshal(raw, b.Breakdown); err != nil {
				return nil, 0, fmt.Errorf("decode price breakdown failed: %w", err)
			}
		}
		result = append(result, &b)
	}

	return result, total, rows.Err()
}

func (r *pgxRepository) Cancel(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", StatusCancelled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": StatusConfirmed}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
