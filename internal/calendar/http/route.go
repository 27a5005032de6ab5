package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/calendar", h.Occupied)

	blackouts := g.Group("/blackouts")
	{
		blackouts.POST("", h.CreateBlackout)
		blackouts.GET("", h.ListBlackouts)
		blackouts.DELETE("/:id", h.DeleteBlackout)
	}
}
