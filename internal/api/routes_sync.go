package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/handlers"
)

func registerSyncRoutes(api *gin.RouterGroup, deps Deps) {
	handler := handlers.NewSyncHandler(deps.Sync)

	api.POST("/sync", handler.Sync)
}
