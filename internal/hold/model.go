package hold

import (
	"net/http"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, apperror.KindNotFound, "hold not found")
	ErrExpired      = apperror.New(http.StatusGone, apperror.KindExpiry, "hold has expired")
	ErrRangeHeld    = apperror.New(http.StatusConflict, apperror.KindConflict, "dates are no longer available")
	ErrInvalidRange = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start date must be before end date")
	ErrNoSession    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "session id is required")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusConsumed Status = "consumed"
	StatusReleased Status = "released"
	StatusExpired  Status = "expired"
)

// Hold is a short-lived exclusive claim on a date range during the
// checkout flow. It is the only state that blocks other concurrent
// attempts before a booking is confirmed, and it disappears only by
// consumption, explicit release, or reaper expiry.
type Hold struct {
	ID         string
	Range      daterange.Range
	SessionID  string
	Guests     int
	CouponCode string
	Status     Status
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Live reports whether the hold still blocks its range at the given
// instant. A hold past its expiry never blocks, even before the
// reaper has swept it.
func (h *Hold) Live(now time.Time) bool {
	return h.Status == StatusActive && now.Before(h.ExpiresAt)
}
