package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pkg/response"
	"github.com/pinecove/rental-booking-backend/internal/pricing"
)

type Handler struct {
	engine pricing.Service
}

func NewHandler(engine pricing.Service) *Handler {
	return &Handler{engine: engine}
}

// Quote returns the advisory price breakdown for a candidate stay.
// Read-only: no hold is taken and nothing is reserved.
func (h *Handler) Quote(c *gin.Context) {
	var q QuoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start, end and guests query parameters are required"})
		return
	}

	rng, err := daterange.Parse(q.Start, q.End)
	if err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, apperror.KindValidation, err.Error()))
		return
	}

	bd, err := h.engine.Quote(c.Request.Context(), pricing.QuoteInput{
		Range:      rng,
		Guests:     q.Guests,
		CouponCode: q.CouponCode,
		At:         time.Now(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewQuoteResponse(bd))
}
