package http

import (
	"time"

	"github.com/pinecove/rental-booking-backend/internal/booking"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	pricingHttp "github.com/pinecove/rental-booking-backend/internal/pricing/http"
)

// FinalizeBookingRequest commits a checkout: the hold being spent, the
// guest's details and the payment processor's confirmation signal.
type FinalizeBookingRequest struct {
	HoldID string `json:"hold_id" binding:"required,uuid"`
	Guest  struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	} `json:"guest" binding:"required"`
	Payment struct {
		Reference string `json:"reference" binding:"required"`
		Succeeded bool   `json:"succeeded"`
	} `json:"payment" binding:"required"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

type BookingResponse struct {
	ID         string                     `json:"id"`
	Start      string                     `json:"start"`
	End        string                     `json:"end"`
	GuestName  string                     `json:"guest_name"`
	GuestEmail string                     `json:"guest_email"`
	GuestCount int                        `json:"guest_count"`
	Status     string                     `json:"status"`
	Breakdown  *pricingHttp.QuoteResponse `json:"price_breakdown,omitempty"`
	PaymentRef string                     `json:"payment_ref"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID,
		Start:      b.Range.Start.Format(daterange.Layout),
		End:        b.Range.End.Format(daterange.Layout),
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestCount: b.GuestCount,
		Status:     string(b.Status),
		PaymentRef: b.PaymentRef,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.Breakdown != nil {
		q := pricingHttp.NewQuoteResponse(b.Breakdown)
		resp.Breakdown = &q
	}
	return resp
}
