// Package availability decides whether a date range is bookable. The
// resolver is free of side effects: the same check serves advisory
// quotes (where a slightly stale answer is fine) and runs again inside
// the hold admission critical section (where it must be fresh).
package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pinecove/rental-booking-backend/internal/calendar"
	"github.com/pinecove/rental-booking-backend/internal/hold"
	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

var (
	ErrInvalidRange = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start date must be before end date")

	errAdmissionHalted = apperror.New(http.StatusConflict, apperror.KindInvariant, "bookings for these dates are suspended pending operator review")
)

// CalendarSource is the slice of the calendar store the resolver needs.
type CalendarSource interface {
	Occupied(ctx context.Context, r daterange.Range) ([]calendar.Occupancy, error)
}

// HoldSource exposes live holds overlapping a range.
type HoldSource interface {
	ActiveOverlapping(ctx context.Context, r daterange.Range, excludeID string) ([]*hold.Hold, error)
}

// RuleSource exposes the minimum-stay requirement in effect.
type RuleSource interface {
	MinimumNights(ctx context.Context, r daterange.Range) (int, error)
}

// AlertSource reports unresolved invariant alerts covering a range;
// while one is open, new hold admissions for those dates stay halted.
type AlertSource interface {
	HasOpenInvariant(ctx context.Context, r daterange.Range) (bool, error)
}

// Verdict is the typed result of an availability check. Reason is
// user-facing; Kind matches the error taxonomy for the unavailable
// case.
type Verdict struct {
	Available bool
	Reason    string
	Kind      apperror.Kind
}

type Resolver struct {
	cal    CalendarSource
	holds  HoldSource
	rules  RuleSource
	alerts AlertSource
}

func NewResolver(cal CalendarSource, holds HoldSource, rules RuleSource, alerts AlertSource) *Resolver {
	return &Resolver{cal: cal, holds: holds, rules: rules, alerts: alerts}
}

// Check resolves availability for r, ignoring the hold identified by
// excludeHoldID (used when a session re-requests its own dates).
// Business outcomes come back in the Verdict; the error return is
// reserved for storage faults.
func (res *Resolver) Check(ctx context.Context, r daterange.Range, excludeHoldID string) (Verdict, error) {
	if !r.Start.Before(r.End) {
		return Verdict{Reason: ErrInvalidRange.Message, Kind: apperror.KindValidation}, nil
	}

	halted, err := res.alerts.HasOpenInvariant(ctx, r)
	if err != nil {
		return Verdict{}, err
	}
	if halted {
		return Verdict{Reason: errAdmissionHalted.Message, Kind: apperror.KindInvariant}, nil
	}

	entries, err := res.cal.Occupied(ctx, r)
	if err != nil {
		if errors.Is(err, calendar.ErrOverlapInvariant) {
			return Verdict{Reason: errAdmissionHalted.Message, Kind: apperror.KindInvariant}, nil
		}
		return Verdict{}, err
	}
	if len(entries) > 0 {
		return Verdict{Reason: conflictReason(entries[0]), Kind: apperror.KindConflict}, nil
	}

	live, err := res.holds.ActiveOverlapping(ctx, r, excludeHoldID)
	if err != nil {
		return Verdict{}, err
	}
	if len(live) > 0 {
		return Verdict{Reason: "dates are held by another checkout in progress", Kind: apperror.KindConflict}, nil
	}

	minNights, err := res.rules.MinimumNights(ctx, r)
	if err != nil {
		return Verdict{}, err
	}
	if r.Nights() < minNights {
		return Verdict{
			Reason: fmt.Sprintf("these dates require a minimum stay of %d nights", minNights),
			Kind:   apperror.KindValidation,
		}, nil
	}

	return Verdict{Available: true}, nil
}

// Admit adapts Check to the hold manager's admission gate: nil means
// admitted, otherwise a typed error carries the conflict reason.
func (res *Resolver) Admit(ctx context.Context, r daterange.Range, excludeHoldID string) error {
	v, err := res.Check(ctx, r, excludeHoldID)
	if err != nil {
		return err
	}
	if v.Available {
		return nil
	}
	return apperror.New(statusForKind(v.Kind), v.Kind, v.Reason)
}

func conflictReason(o calendar.Occupancy) string {
	switch o.Kind {
	case calendar.KindBlackout:
		if o.Detail != "" {
			return "dates fall inside an owner blackout: " + o.Detail
		}
		return "dates fall inside an owner blackout"
	case calendar.KindExternal:
		return "dates are reserved on another booking channel"
	default:
		return "dates are already booked"
	}
}

func statusForKind(k apperror.Kind) int {
	switch k {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindInvariant:
		return http.StatusConflict
	default:
		return http.StatusConflict
	}
}
