package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pinecove/rental-booking-backend/internal/alert"
	"github.com/pinecove/rental-booking-backend/internal/pkg/request"
	"github.com/pinecove/rental-booking-backend/internal/pkg/response"
)

type Handler struct {
	service alert.Service
}

func NewHandler(service alert.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var q ListAlertsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	alerts, total, err := h.service.List(c.Request.Context(), alert.Filter{
		Kind:       alert.Kind(q.Kind),
		Unresolved: q.Unresolved,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		items[i] = NewAlertResponse(a)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

// Resolve closes an alert. Resolving an invariant alert re-opens hold
// admission for its range.
func (h *Handler) Resolve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Resolve(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
