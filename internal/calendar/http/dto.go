package http

import (
	"time"

	"github.com/pinecove/rental-booking-backend/internal/calendar"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

// CreateBlackoutRequest blocks a date range from guest booking.
type CreateBlackoutRequest struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Reason string `json:"reason"`
}

type BlackoutResponse struct {
	ID        string    `json:"id"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBlackoutResponse(b *calendar.BlackoutPeriod) BlackoutResponse {
	return BlackoutResponse{
		ID:        b.ID,
		Start:     b.Range.Start.Format(daterange.Layout),
		End:       b.Range.End.Format(daterange.Layout),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

// OccupancyResponse exposes occupied ranges without any guest data;
// the booking page only needs to grey out days.
type OccupancyResponse struct {
	Kind  string `json:"kind"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func NewOccupancyResponse(o calendar.Occupancy) OccupancyResponse {
	return OccupancyResponse{
		Kind:  string(o.Kind),
		Start: o.Range.Start.Format(daterange.Layout),
		End:   o.Range.End.Format(daterange.Layout),
	}
}
