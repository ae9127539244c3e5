package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/services"
	"github.com/kmarchat/streamgate/pkg/response"
)

// SyncHandler triggers full catalog refreshes.
type SyncHandler struct {
	sync *services.SyncService
}

func NewSyncHandler(sync *services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// POST /api/sync
func (h *SyncHandler) Sync(c *gin.Context) {
	// The report carries its own success flag; a failed sync is still a
	// completed request.
	report := h.sync.SyncAll(requestContext(c))
	response.Success(c, http.StatusOK, report)
}
