package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinecove/rental-booking-backend/internal/calendar"
	"github.com/pinecove/rental-booking-backend/internal/pkg/apperror"
	"github.com/pinecove/rental-booking-backend/internal/pkg/daterange"
	"github.com/pinecove/rental-booking-backend/internal/pkg/request"
	"github.com/pinecove/rental-booking-backend/internal/pkg/response"
)

type Handler struct {
	service calendar.Service
}

func NewHandler(service calendar.Service) *Handler {
	return &Handler{service: service}
}

// Occupied lists the occupied ranges inside a window so the booking
// page can grey out unavailable days. An invariant detection does not
// hide the calendar; the affected entries are still returned.
func (h *Handler) Occupied(c *gin.Context) {
	var q request.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query parameters are required"})
		return
	}

	window, err := daterange.Parse(q.Start, q.End)
	if err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, apperror.KindValidation, err.Error()))
		return
	}

	entries, err := h.service.Occupied(c.Request.Context(), window)
	if err != nil && !errors.Is(err, calendar.ErrOverlapInvariant) {
		response.Error(c, err)
		return
	}

	items := make([]OccupancyResponse, len(entries))
	for i, o := range entries {
		items[i] = NewOccupancyResponse(o)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateBlackout records an owner-designated range excluded from guest
// booking, e.g. personal use or maintenance.
func (h *Handler) CreateBlackout(c *gin.Context) {
	var body CreateBlackoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	rng, err := daterange.Parse(body.Start, body.End)
	if err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, apperror.KindValidation, err.Error()))
		return
	}

	b, err := h.service.CreateBlackout(c.Request.Context(), rng, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBlackoutResponse(b))
}

func (h *Handler) ListBlackouts(c *gin.Context) {
	var q request.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query parameters are required"})
		return
	}

	window, err := daterange.Parse(q.Start, q.End)
	if err != nil {
		response.Error(c, apperror.Wrap(err, http.StatusBadRequest, apperror.KindValidation, err.Error()))
		return
	}

	blackouts, err := h.service.ListBlackouts(c.Request.Context(), window)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BlackoutResponse, len(blackouts))
	for i, b := range blackouts {
		items[i] = NewBlackoutResponse(b)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) DeleteBlackout(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.DeleteBlackout(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
