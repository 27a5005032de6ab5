package http

import (
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

// QuoteQuery is the guest's quote request. The coupon is optional;
// supplying an invalid one is an error, not a silent no-op.
type QuoteQuery struct {
	Start      string `form:"start" binding:"required"`
	End        string `form:"end" binding:"required"`
	Guests     int    `form:"guests" binding:"required,min=1"`
	CouponCode string `form:"coupon"`
}

type LineResponse struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// QuoteResponse is the itemized breakdown. Amounts are minor currency
// units so clients never re-round.
type QuoteResponse struct {
	Currency    string         `json:"currency"`
	Nights      int            `json:"nights"`
	NightlyRate int64          `json:"nightly_rate"`
	Lines       []LineResponse `json:"lines"`
	Subtotal    int64          `json:"subtotal"`
	Tax         int64          `json:"tax"`
	Discount    int64          `json:"discount"`
	Total       int64          `json:"total"`
}

func NewQuoteResponse(bd *pricing.Breakdown) QuoteResponse {
	lines := make([]LineResponse, len(bd.Lines))
	for i, l := range bd.Lines {
		lines[i] = LineResponse{Label: l.Label, Amount: int64(l.Amount)}
	}
	return QuoteResponse{
		Currency:    bd.Currency,
		Nights:      bd.Nights,
		NightlyRate: int64(bd.NightlyRate),
		Lines:       lines,
		Subtotal:    int64(bd.Subtotal),
		Tax:         int64(bd.Tax),
		Discount:    int64(bd.Discount),
		Total:       int64(bd.Total),
	}
}
