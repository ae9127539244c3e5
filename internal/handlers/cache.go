package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/cache"
	appErrors "github.com/kmarchat/streamgate/pkg/errors"
	"github.com/kmarchat/streamgate/pkg/response"
	"github.com/kmarchat/streamgate/pkg/validator"
)

// CacheHandler exposes the response cache admin surface.
type CacheHandler struct {
	cache *cache.ResponseCache
}

func NewCacheHandler(responseCache *cache.ResponseCache) *CacheHandler {
	return &CacheHandler{cache: responseCache}
}

type invalidateRequest struct {
	Pattern string `json:"pattern" validate:"required,min=1"`
}

// GET /api/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	stats := h.cache.ReadStats(requestContext(c))
	response.Success(c, http.StatusOK, stats)
}

// POST /api/cache/clear
func (h *CacheHandler) Clear(c *gin.Context) {
	removed := h.cache.Clear(requestContext(c))
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// POST /api/cache/clear-expired
func (h *CacheHandler) ClearExpired(c *gin.Context) {
	removed := h.cache.ClearExpired(requestContext(c))
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// POST /api/cache/invalidate
func (h *CacheHandler) Invalidate(c *gin.Context) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid request body"))
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}

	removed := h.cache.InvalidatePattern(requestContext(c), req.Pattern)
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}
