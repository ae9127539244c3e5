package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/services"
	appErrors "github.com/kmarchat/streamgate/pkg/errors"
	"github.com/kmarchat/streamgate/pkg/response"
)

// PlayerHandler proxies the provider's player_api.php endpoint. Responses are
// raw provider JSON so players see exactly the upstream shape; the listing
// actions additionally feed the structured catalog.
type PlayerHandler struct {
	catalog *services.CatalogService
}

func NewPlayerHandler(catalog *services.CatalogService) *PlayerHandler {
	return &PlayerHandler{catalog: catalog}
}

// GET /player_api.php
func (h *PlayerHandler) Handle(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		response.Error(c, appErrors.NewBadRequest("action parameter is required"))
		return
	}

	params := url.Values{}
	for name, values := range c.Request.URL.Query() {
		// Client credentials never reach cache keys or the upstream URL
		// builder; the fetch layer injects the configured account.
		if name == "action" || name == "username" || name == "password" {
			continue
		}
		params[name] = values
	}

	var payload []byte
	var err error
	switch action {
	case services.PayloadVodList.Action():
		payload, err = h.catalog.GetListing(requestContext(c), services.PayloadVodList, params)
	case services.PayloadSeriesList.Action():
		payload, err = h.catalog.GetListing(requestContext(c), services.PayloadSeriesList, params)
	default:
		payload, err = h.catalog.GetAction(requestContext(c), action, params)
	}
	if err != nil {
		response.Error(c, appErrors.ErrUpstreamUnavailable.WithInternal(err))
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}
