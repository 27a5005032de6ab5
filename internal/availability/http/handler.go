package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinecove/rental-booking-backend/internal/availability"
	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pkg/request"
	"github.com/pinecove/rental-booking-backend/internal/pkg/response"
)

type Handler struct {
	resolver *availability.Resolver
}

func NewHandler(resolver *availability.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Check answers "are these dates bookable" as an advisory verdict.
// A false answer is a normal payload, not an error status; only
// malformed input and storage faults are errors.
func (h *Handler) Check(c *gin.Context) {
	var q request.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query parameters are required"})
		return
	}

	rng, err := daterange.Parse(q.Start, q.End)
	if err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, apperror.KindValidation, err.Error()))
		return
	}

	excludeHoldID := c.Query("exclude_hold_id")

	verdict, err := h.resolver.Check(c.Request.Context(), rng, excludeHoldID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAvailabilityResponse(verdict))
}
