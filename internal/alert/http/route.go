package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/alerts")
	{
		group.GET("", h.List)
		group.POST("/:id/resolve", h.Resolve)
	}
}
