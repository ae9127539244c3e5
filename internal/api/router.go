package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/internal/handlers"
	"github.com/kmarchat/streamgate/internal/middleware"
	"github.com/kmarchat/streamgate/internal/services"
)

// Deps carries the wired service instances the router exposes.
type Deps struct {
	Cache   *cache.ResponseCache
	Items   *services.ItemService
	Catalog *services.CatalogService
	Sync    *services.SyncService

	// RateLimit requests per RateWindow per (IP, path); zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Cache == nil {
		return nil, fmt.Errorf("response cache must be provided")
	}
	if deps.Items == nil {
		return nil, fmt.Errorf("item service must be provided")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog service must be provided")
	}
	if deps.Sync == nil {
		return nil, fmt.Errorf("sync service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if deps.RateLimit > 0 {
		r.Use(middleware.RateLimit(deps.RateLimit, deps.RateWindow))
	}

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerPlayerRoutes(r, deps)

	api := r.Group("/api")
	registerItemRoutes(api, deps)
	registerCacheRoutes(api, deps)
	registerSyncRoutes(api, deps)

	return r, nil
}
