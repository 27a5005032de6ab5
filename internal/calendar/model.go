package calendar

import (
	"net/http"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

var (
	ErrInvalidRange = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start date must be before end date")
	ErrNotFound     = apperror.New(http.StatusNotFound, apperror.KindNotFound, "calendar entry not found")

	// ErrOverlapInvariant signals that two confirmed entries were found
	// overlapping each other. This indicates a bug or storage failure
	// and halts new hold admissions for the affected range.
	ErrOverlapInvariant = apperror.New(http.StatusInternalServerError, apperror.KindInvariant, "overlapping confirmed reservations detected")
)

// OccupancyKind identifies which collaborator put a range on the calendar.
type OccupancyKind string

const (
	KindBooking  OccupancyKind = "booking"
	KindBlackout OccupancyKind = "blackout"
	KindExternal OccupancyKind = "external"
)

// Occupancy is one occupied range on the property calendar, regardless
// of origin. Detail carries the blackout reason or the external source
// name; it is never guest data.
type Occupancy struct {
	Kind   OccupancyKind
	ID     string
	Range  daterange.Range
	Detail string
}

// BlackoutPeriod is an owner-designated range excluded from guest
// booking. Authored by the admin workflow; read-only to the engine.
type BlackoutPeriod struct {
	ID        string
	Range     daterange.Range
	Reason    string
	CreatedAt time.Time
}

// ExternalReservation is a booking recorded by a third-party channel,
// synchronized in for availability purposes only. It is never priced
// by this engine.
type ExternalReservation struct {
	ID          string
	Source      string
	ExternalRef string
	Range       daterange.Range
	CreatedAt   time.Time
}
