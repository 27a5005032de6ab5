package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

var errSettingsMissing = apperror.New(http.StatusInternalServerError, apperror.KindInternal, "property pricing settings are not configured")

type Repository interface {
	Settings(ctx context.Context) (*Settings, error)
	// Rules returns all pricing rules ordered by descending priority.
	Rules(ctx context.Context) ([]Rule, error)
	// Coupon returns ErrInvalidCoupon when the code does not exist.
	Coupon(ctx context.Context, code string) (*Coupon, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Settings(ctx context.Context) (*Settings, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"currency", "base_rate_cents", "cleaning_fee_cents", "service_fee_cents",
		"tax_rate_bp", "default_min_stay", "min_guests", "max_guests",
	).
		From("public.property_settings").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build settings query failed: %w", err)
	}

	var s Settings
	row := r.pool.QueryRow(ctx, query, args...)
	if err := row.Scan(
		&s.Currency, &s.BaseRate, &s.CleaningFee, &s.ServiceFee,
		&s.TaxRateBP, &s.DefaultMinStay, &s.MinGuests, &s.MaxGuests,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errSettingsMissing
		}
		return nil, fmt.Errorf("get settings failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) Rules(ctx context.Context) ([]Rule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "priority", "start_date", "end_date",
		"min_nights", "effect", "value", "created_at",
	).
		From("public.pricing_rules").
		OrderBy("priority DESC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rules query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pricing rules failed: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var (
			rule               Rule
			startDate, endDate *time.Time
		)
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Priority, &startDate, &endDate,
			&rule.MinNights, &rule.Effect, &rule.Value, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pricing rule failed: %w", err)
		}
		if startDate != nil && endDate != nil {
			w, err := daterange.New(*startDate, *endDate)
			if err != nil {
				return nil, fmt.Errorf("pricing rule %s has invalid window: %w", rule.ID, err)
			}
			rule.Window = &w
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *pgxRepository) Coupon(ctx context.Context, code string) (*Coupon, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"code", "discount_type", "discount_value",
		"valid_from", "valid_until", "max_uses", "used_count",
	).
		From("public.coupons").
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build coupon query failed: %w", err)
	}

	var (
		c                     Coupon
		validFrom, validUntil *time.Time
	)
	row := r.pool.QueryRow(ctx, query, args...)
	if err := row.Scan(
		&c.Code, &c.Type, &c.Value,
		&validFrom, &validUntil, &c.MaxUses, &c.UsedCount,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCoupon
		}
		return nil, fmt.Errorf("get coupon failed: %w", err)
	}
	if validFrom != nil {
		c.ValidFrom = *validFrom
	}
	if validUntil != nil {
		c.ValidUntil = *validUntil
	}
	return &c, nil
}
