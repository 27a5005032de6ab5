package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pkg/money"
)

// QuoteInput carries everything the engine needs. At is the pricing
// clock used for coupon validity; passing it explicitly keeps Quote
// pure, so an advisory quote and the price locked into a booking at
// finalize time are the exact same computation.
type QuoteInput struct {
	Range      daterange.Range
	Guests     int
	CouponCode string
	At         time.Time
}

type Service interface {
	Quote(ctx context.Context, in QuoteInput) (*Breakdown, error)
	// MinimumNights returns the strictest minimum-stay requirement in
	// effect for any night of the range.
	MinimumNights(ctx context.Context, r daterange.Range) (int, error)
}

type engine struct {
	repo Repository
}

func NewEngine(repo Repository) Service {
	return &engine{repo: repo}
}

func (e *engine) Quote(ctx context.Context, in QuoteInput) (*Breakdown, error) {
	if !in.Range.Start.Before(in.Range.End) {
		return nil, ErrInvalidRange
	}

	settings, err := e.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if in.Guests < max(settings.MinGuests, 1) || in.Guests > settings.MaxGuests {
		return nil, ErrGuestCount
	}

	rules, err := e.repo.Rules(ctx)
	if err != nil {
		return nil, err
	}

	nights := in.Range.Nights()
	if nights < minimumNights(settings, rules, in.Range) {
		return nil, ErrBelowMinimumStay
	}

	bd := &Breakdown{Currency: settings.Currency, Nights: nights}

	// 1. Per-night rate resolution: rules are pre-sorted by descending
	// priority, the first matching multiplier/override wins for that
	// night. Summing per-night rates prices seasonal boundaries inside
	// a single stay correctly.
	var nightlyTotal money.Cents
	for _, night := range in.Range.Days() {
		nightlyTotal += resolveNightRate(settings, rules, night, nights)
	}
	bd.NightlyRate = money.RoundHalfUpRatio(nightlyTotal, 1, int64(nights))
	bd.Lines = append(bd.Lines, Line{
		Label:  fmt.Sprintf("Accommodation (%d nights)", nights),
		Amount: nightlyTotal,
	})

	// 2. Flat fees: configured property fees, then every matching fee
	// rule, each as its own line item.
	subtotal := nightlyTotal
	if settings.CleaningFee > 0 {
		bd.Lines = append(bd.Lines, Line{Label: "Cleaning fee", Amount: settings.CleaningFee})
		subtotal += settings.CleaningFee
	}
	if settings.ServiceFee > 0 {
		bd.Lines = append(bd.Lines, Line{Label: "Service fee", Amount: settings.ServiceFee})
		subtotal += settings.ServiceFee
	}
	for _, rule := range rules {
		if rule.Effect == EffectFee && rule.matchesStay(in.Range) && rule.MinNights <= nights {
			bd.Lines = append(bd.Lines, Line{Label: rule.Name, Amount: money.Cents(rule.Value)})
			subtotal += money.Cents(rule.Value)
		}
	}
	bd.Subtotal = subtotal

	// 3. Tax: percentage of the subtotal, rounded half-up exactly once
	// at the end rather than per line item.
	bd.Tax = money.PercentBP(bd.Subtotal, settings.TaxRateBP)
	if bd.Tax > 0 {
		bd.Lines = append(bd.Lines, Line{
			Label:  fmt.Sprintf("Tax (%s%%)", formatBP(settings.TaxRateBP)),
			Amount: bd.Tax,
		})
	}

	// 4. Coupon last. Invalid or expired codes are an error, never
	// silently ignored.
	if in.CouponCode != "" {
		coupon, err := e.repo.Coupon(ctx, in.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := coupon.ValidAt(in.At); err != nil {
			return nil, err
		}
		bd.Discount = couponDiscount(coupon, bd.Subtotal)
		bd.Lines = append(bd.Lines, Line{
			Label:  "Coupon " + coupon.Code,
			Amount: -bd.Discount,
		})
	}

	bd.Total = bd.Subtotal + bd.Tax - bd.Discount
	return bd, nil
}

func (e *engine) MinimumNights(ctx context.Context, r daterange.Range) (int, error) {
	settings, err := e.repo.Settings(ctx)
	if err != nil {
		return 0, err
	}
	rules, err := e.repo.Rules(ctx)
	if err != nil {
		return 0, err
	}
	return minimumNights(settings, rules, r), nil
}

func minimumNights(settings *Settings, rules []Rule, r daterange.Range) int {
	min := settings.DefaultMinStay
	if min < 1 {
		min = 1
	}
	for _, rule := range rules {
		if rule.Effect == EffectMinStay && rule.matchesStay(r) && int(rule.Value) > min {
			min = int(rule.Value)
		}
	}
	return min
}

// resolveNightRate picks the rate for one night. Rules arrive sorted
// by descending priority; the first multiplier or override whose scope
// matches wins, otherwise the base rate applies.
func resolveNightRate(settings *Settings, rules []Rule, night time.Time, stayNights int) money.Cents {
	for _, rule := range rules {
		if !rule.matchesNight(night, stayNights) {
			continue
		}
		switch rule.Effect {
		case EffectOverride:
			return money.Cents(rule.Value)
		case EffectMultiplier:
			return money.RoundHalfUpRatio(settings.BaseRate, rule.Value, 10000)
		}
	}
	return settings.BaseRate
}

func couponDiscount(c *Coupon, subtotal money.Cents) money.Cents {
	switch c.Type {
	case DiscountPercent:
		return money.PercentBP(subtotal, c.Value)
	default:
		d := money.Cents(c.Value)
		if d > subtotal {
			d = subtotal
		}
		return d
	}
}

func formatBP(bp int64) string {
	if bp%100 == 0 {
		return fmt.Sprintf("%d", bp/100)
	}
	return fmt.Sprintf("%d.%02d", bp/100, bp%100)
}
