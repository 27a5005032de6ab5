package http

import "github.com/pinecove/rental-booking-backend/internal/availability"

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

func NewAvailabilityResponse(v availability.Verdict) AvailabilityResponse {
	return AvailabilityResponse{
		Available: v.Available,
		Reason:    v.Reason,
		Kind:      string(v.Kind),
	}
}
