package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/handlers"
)

func registerCacheRoutes(api *gin.RouterGroup, deps Deps) {
	handler := handlers.NewCacheHandler(deps.Cache)

	group := api.Group("/cache")
	{
		group.GET("/stats", handler.Stats)
		group.POST("/clear", handler.Clear)
		group.POST("/clear-expired", handler.ClearExpired)
		group.POST("/invalidate", handler.Invalidate)
	}
}
