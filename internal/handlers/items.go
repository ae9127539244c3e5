package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/models"
	"github.com/kmarchat/streamgate/internal/services"
	appErrors "github.com/kmarchat/streamgate/pkg/errors"
	"github.com/kmarchat/streamgate/pkg/response"
)

// ItemsHandler exposes the stored catalog over the admin API.
type ItemsHandler struct {
	items *services.ItemService
}

func NewItemsHandler(items *services.ItemService) *ItemsHandler {
	return &ItemsHandler{items: items}
}

// GET /api/items
func (h *ItemsHandler) List(c *gin.Context) {
	itemType, ok := models.ParseItemType(c.Query("type"))
	if !ok {
		response.Error(c, appErrors.ErrInvalidItemType)
		return
	}

	page, limit, err := paginationParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.items.ListByType(requestContext(c), services.ListOptions{
		Type:       itemType,
		CategoryID: c.Query("category_id"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Items, listMeta(result))
}

// GET /api/items/:type/:id
func (h *ItemsHandler) Get(c *gin.Context) {
	itemType, ok := models.ParseItemType(c.Param("type"))
	if !ok {
		response.Error(c, appErrors.ErrInvalidItemType)
		return
	}

	item, err := h.items.GetByID(requestContext(c), c.Param("id"), itemType)
	if err != nil {
		response.Error(c, err)
		return
	}
	if item == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// GET /api/search
func (h *ItemsHandler) Search(c *gin.Context) {
	var itemType models.ItemType
	if raw := c.Query("type"); raw != "" {
		parsed, ok := models.ParseItemType(raw)
		if !ok {
			response.Error(c, appErrors.ErrInvalidItemType)
			return
		}
		itemType = parsed
	}

	page, limit, err := paginationParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.items.SearchByName(requestContext(c), services.SearchOptions{
		Query: c.Query("q"),
		Type:  itemType,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, result.Items, listMeta(result))
}

// paginationParams reads page/limit query parameters. Absent values mean an
// unpaginated listing; malformed values are rejected rather than defaulted.
func paginationParams(c *gin.Context) (page, limit int, err error) {
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.ErrInvalidPagination
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, appErrors.ErrInvalidPagination
		}
	}
	if limit > 0 && page == 0 {
		page = 1
	}
	return page, limit, nil
}

func listMeta(result *services.ListResult) *response.Meta {
	return &response.Meta{
		Page:            result.Pagination.Page,
		PerPage:         result.Pagination.Limit,
		Total:           result.TotalCount,
		TotalPages:      result.Pagination.TotalPages,
		HasNextPage:     result.Pagination.HasNextPage,
		HasPreviousPage: result.Pagination.HasPreviousPage,
	}
}
