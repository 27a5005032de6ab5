package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pinecove/rental-booking-backend/internal/feedsync"
)

type Handler struct {
	service feedsync.Service
}

func NewHandler(service feedsync.Service) *Handler {
	return &Handler{service: service}
}

type resultResponse struct {
	Source    string    `json:"source"`
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Conflicts int       `json:"conflicts"`
	Error     string    `json:"error,omitempty"`
	SyncedAt  time.Time `json:"synced_at"`
}

// Sync triggers an on-demand reconciliation of every configured feed.
// Partial failure is reported per source, not as an overall error.
func (h *Handler) Sync(c *gin.Context) {
	results := h.service.SyncAll(c.Request.Context())

	items := make([]resultResponse, len(results))
	for i, r := range results {
		items[i] = resultResponse{
			Source:    r.Source,
			Added:     r.Added,
			Removed:   r.Removed,
			Conflicts: r.Conflicts,
			SyncedAt:  r.SyncedAt,
		}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.POST("/sync", h.Sync)
}
