package http

import (
	"time"

	"github.com/pinecove/rental-booking-backend/internal/hold"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

// CreateHoldRequest starts a checkout: an exclusive claim on the dates
// for the session. A session may hold one range at a time, so a second
// request replaces the first.
type CreateHoldRequest struct {
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
	SessionID  string `json:"session_id" binding:"required"`
	Guests     int    `json:"guests" binding:"required,min=1"`
	CouponCode string `json:"coupon_code"`
}

type HoldResponse struct {
	ID        string    `json:"id"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	SessionID string    `json:"session_id"`
	Guests    int       `json:"guests"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func NewHoldResponse(h *hold.Hold) HoldResponse {
	return HoldResponse{
		ID:        h.ID,
		Start:     h.Range.Start.Format(daterange.Layout),
		End:       h.Range.End.Format(daterange.Layout),
		SessionID: h.SessionID,
		Guests:    h.Guests,
		Status:    string(h.Status),
		ExpiresAt: h.ExpiresAt,
		CreatedAt: h.CreatedAt,
	}
}
