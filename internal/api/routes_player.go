package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/handlers"
)

func registerPlayerRoutes(r *gin.Engine, deps Deps) {
	handler := handlers.NewPlayerHandler(deps.Catalog)

	r.GET("/player_api.php", handler.Handle)
}
