package alert

import (
	"net/http"
	"time"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

var ErrNotFound = apperror.New(http.StatusNotFound, apperror.KindNotFound, "alert not found")

// Kind classifies an operator alert.
type Kind string

const (
	// KindSyncConflict: an externally-synced reservation overlaps a
	// confirmed internal booking. Both records are kept; an operator
	// decides the resolution.
	KindSyncConflict Kind = "sync_conflict"
	// KindInvariant: the calendar holds two confirmed bookings on the
	// same nights. Hold admissions over the range stay halted until
	// the alert is resolved.
	KindInvariant Kind = "invariant_violation"
)

// Alert is an operator-visible condition that the engine never
// auto-resolves.
type Alert struct {
	ID        string
	Kind      Kind
	Message   string
	Range     daterange.Range
	Resolved  bool
	CreatedAt time.Time
}

// Filter defines parameters for listing alerts.
type Filter struct {
	Kind       Kind
	Unresolved bool
	Page       int
	PageSize   int
}
