package pricing

import (
	"net/http"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pkg/money"
)

var (
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start date must be before end date")
	ErrInvalidCoupon    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "coupon code is invalid or expired")
	ErrCouponExhausted  = apperror.New(http.StatusConflict, apperror.KindConflict, "coupon has reached its usage limit")
	ErrBelowMinimumStay = apperror.New(http.StatusBadRequest, apperror.KindValidation, "stay is shorter than the minimum for these dates")
	ErrGuestCount       = apperror.New(http.StatusBadRequest, apperror.KindValidation, "guest count is out of bounds for this property")
)

// Effect determines how a matching rule changes the price.
type Effect string

const (
	// EffectMultiplier scales the base nightly rate; Value is in basis
	// points (12000 = 1.2x).
	EffectMultiplier Effect = "multiplier"
	// EffectOverride replaces the nightly rate; Value is in cents.
	EffectOverride Effect = "override"
	// EffectFee adds a flat line item to the stay; Value is in cents.
	EffectFee Effect = "fee"
	// EffectMinStay imposes a minimum number of nights; Value is the
	// night count.
	EffectMinStay Effect = "min_stay"
)

// Rule is one admin-authored pricing rule. Scope is a date window
// (nil means any date) and/or a length-of-stay threshold (0 means any
// length). For the nightly rate, rules are evaluated in descending
// priority order and the first match wins for that night.
type Rule struct {
	ID        string
	Name      string
	Priority  int
	Window    *daterange.Range
	MinNights int
	Effect    Effect
	Value     int64
	CreatedAt time.Time
}

// matchesNight reports whether the rule's scope covers the given night
// of a stay of the given total length.
func (r Rule) matchesNight(night time.Time, stayNights int) bool {
	if r.Window != nil && !r.Window.Contains(night) {
		return false
	}
	if r.MinNights > 0 && stayNights < r.MinNights {
		return false
	}
	return true
}

// matchesStay reports whether the rule's window overlaps any night of
// the stay.
func (r Rule) matchesStay(stay daterange.Range) bool {
	return r.Window == nil || r.Window.Overlaps(stay)
}

// DiscountType is how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent" // value in basis points
	DiscountFixed   DiscountType = "fixed"   // value in cents
)

// Coupon is an admin-authored discount code, applied at most once per
// booking as the last line item before the total.
type Coupon struct {
	Code       string
	Type       DiscountType
	Value      int64
	ValidFrom  time.Time
	ValidUntil time.Time
	MaxUses    int
	UsedCount  int
}

// ValidAt checks date validity and usage constraints at the given
// pricing clock. Invalid coupons are an error, never silently ignored.
func (c Coupon) ValidAt(at time.Time) error {
	if !c.ValidFrom.IsZero() && at.Before(c.ValidFrom) {
		return ErrInvalidCoupon
	}
	if !c.ValidUntil.IsZero() && !at.Before(c.ValidUntil) {
		return ErrInvalidCoupon
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return ErrCouponExhausted
	}
	return nil
}

// Settings is the property-level pricing configuration.
type Settings struct {
	Currency       string
	BaseRate       money.Cents
	CleaningFee    money.Cents
	ServiceFee     money.Cents
	TaxRateBP      int64
	DefaultMinStay int
	MinGuests      int
	MaxGuests      int
}

// Line is one entry of an itemized price breakdown.
type Line struct {
	Label  string      `json:"label"`
	Amount money.Cents `json:"amount"`
}

// Breakdown is the deterministic, auditable decomposition of a stay's
// cost. Identical inputs (range, guests, coupon, pricing clock) always
// produce an identical breakdown, so the quote shown to the guest and
// the price locked into a booking are the same computation.
type Breakdown struct {
	Currency    string      `json:"currency"`
	Nights      int         `json:"nights"`
	NightlyRate money.Cents `json:"nightly_rate"`
	Lines       []Line      `json:"lines"`
	Subtotal    money.Cents `json:"subtotal"`
	Tax         money.Cents `json:"tax"`
	Discount    money.Cents `json:"discount"`
	Total       money.Cents `json:"total"`
}
