package booking

import (
	"net/http"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, apperror.KindNotFound, "booking not found")
	ErrHoldNotFound   = apperror.New(http.StatusNotFound, apperror.KindNotFound, "hold not found")
	ErrHoldExpired    = apperror.New(http.StatusGone, apperror.KindExpiry, "your reservation window timed out")
	ErrPaymentFailed  = apperror.New(http.StatusBadGateway, apperror.KindExternal, "payment was not confirmed")
	ErrRangeTaken     = apperror.New(http.StatusConflict, apperror.KindConflict, "dates are no longer available")
	ErrGuestInfo      = apperror.New(http.StatusBadRequest, apperror.KindValidation, "guest name and email are required")
	ErrNotCancellable = apperror.New(http.StatusConflict, apperror.KindConflict, "only confirmed bookings can be cancelled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking is the permanent record of a paid stay. It is created only
// by the finalizer; confirmed bookings are immutable except for
// cancellation.
type Booking struct {
	ID         string
	Range      daterange.Range
	GuestName  string
	GuestEmail string
	GuestCount int
	Status     Status
	Breakdown  *pricing.Breakdown
	PaymentRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	Status   Status
	Page     int
	PageSize int
}
