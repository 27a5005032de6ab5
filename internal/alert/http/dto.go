package http

import (
	"time"

	"github.com/pinecove/rental-booking-backend/internal/alert"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
)

// ListAlertsRequest defines query parameters for listing alerts.
type ListAlertsRequest struct {
	Kind       string `form:"kind" binding:"omitempty,oneof=sync_conflict invariant_violation"`
	Unresolved bool   `form:"unresolved"`
	Page       int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

type AlertResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAlertResponse(a *alert.Alert) AlertResponse {
	return AlertResponse{
		ID:        a.ID,
		Kind:      string(a.Kind),
		Message:   a.Message,
		Start:     a.Range.Start.Format(daterange.Layout),
		End:       a.Range.End.Format(daterange.Layout),
		Resolved:  a.Resolved,
		CreatedAt: a.CreatedAt,
	}
}
