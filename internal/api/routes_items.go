package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/handlers"
)

func registerItemRoutes(api *gin.RouterGroup, deps Deps) {
	handler := handlers.NewItemsHandler(deps.Items)

	api.GET("/items", handler.List)
	api.GET("/items/:type/:id", handler.Get)
	api.GET("/search", handler.Search)
}
