package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kmarchat/streamgate/internal/models"
	appErrors "github.com/kmarchat/streamgate/pkg/errors"
	"github.com/kmarchat/streamgate/pkg/logger"
	"github.com/kmarchat/streamgate/pkg/metrics"
)

const upsertBatchSize = 500

// Pagination describes the page window of a list result.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// ListResult is the shape every read operation returns.
type ListResult struct {
	Items      []models.Item `json:"items"`
	Count      int           `json:"count"`
	TotalCount int64         `json:"total_count"`
	Pagination Pagination    `json:"pagination"`
}

// ListOptions filters and paginates a browse query.
type ListOptions struct {
	Type       models.ItemType
	CategoryID string
	Page       int
	Limit      int
}

// SearchOptions controls a substring search. Type is optional; when empty the
// search spans both catalog types.
type SearchOptions struct {
	Query string
	Type  models.ItemType
	Page  int
	Limit int
}

// ItemService owns the structured items table: batch writes from extraction
// and sync, and the paginated read path behind the browse/search endpoints.
type ItemService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewItemService constructs an ItemService using the provided database handle.
func NewItemService(db *gorm.DB) (*ItemService, error) {
	if db == nil {
		return nil, errors.New("item service: db is required")
	}
	return &ItemService{db: db, log: logger.WithModule("items")}, nil
}

// UpsertBatch writes a batch of items in one transaction. Re-inserting an
// existing (id, type) pair overwrites it in place. An empty batch is a no-op.
func (s *ItemService) UpsertBatch(ctx context.Context, items []models.Item) error {
	ctx = ensureContext(ctx)

	items = filterValid(items)
	if len(items) == 0 {
		return nil
	}

	err := s.upsert(ctx, items)
	if isUniqueConstraintError(err) {
		// A concurrent writer can race the conflict target; the retry lands on
		// the now-existing rows and updates them.
		err = s.upsert(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("item service: upsert batch: %w", err)
	}

	countStored(items)
	return nil
}

func (s *ItemService) upsert(ctx context.Context, items []models.Item) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "poster_url", "category_id", "updated_at"}),
		}).CreateInBatches(items, upsertBatchSize).Error
	})
}

// ReplaceAll deletes every row of the given type and writes the fresh batch,
// all inside a single transaction so readers never observe a half-empty table.
func (s *ItemService) ReplaceAll(ctx context.Context, itemType models.ItemType, items []models.Item) (int, error) {
	ctx = ensureContext(ctx)

	if !itemType.Valid() {
		return 0, appErrors.ErrInvalidItemType
	}

	items = filterValid(items)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ?", itemType).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "poster_url", "category_id", "updated_at"}),
		}).CreateInBatches(items, upsertBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("item service: replace %s: %w", itemType, err)
	}

	countStored(items)
	return len(items), nil
}

// ListByType returns items of a type, optionally narrowed to a category,
// ordered by name ascending.
func (s *ItemService) ListByType(ctx context.Context, opts ListOptions) (*ListResult, error) {
	ctx = ensureContext(ctx)

	if !opts.Type.Valid() {
		return nil, appErrors.ErrInvalidItemType
	}
	if err := validatePagination(opts.Page, opts.Limit); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.Item{}).Where("type = ?", opts.Type)
	if category := strings.TrimSpace(opts.CategoryID); category != "" {
		query = query.Where("category_id = ?", category)
	}

	return s.run(query, "name ASC", opts.Page, opts.Limit)
}

// SearchByName performs a case-insensitive substring search on item names.
// A blank query yields an empty result set rather than the whole catalog.
func (s *ItemService) SearchByName(ctx context.Context, opts SearchOptions) (*ListResult, error) {
	ctx = ensureContext(ctx)

	if opts.Type != "" && !opts.Type.Valid() {
		return nil, appErrors.ErrInvalidItemType
	}
	if err := validatePagination(opts.Page, opts.Limit); err != nil {
		return nil, err
	}

	term := strings.TrimSpace(opts.Query)
	if term == "" {
		return emptyResult(opts.Page, opts.Limit), nil
	}

	query := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+strings.ToLower(escapeLike(term))+"%")

	order := "type ASC, name ASC"
	if opts.Type != "" {
		query = query.Where("type = ?", opts.Type)
		order = "name ASC"
	}

	return s.run(query, order, opts.Page, opts.Limit)
}

// GetByID looks up a single item. A miss is a nil item, not an error.
func (s *ItemService) GetByID(ctx context.Context, id string, itemType models.ItemType) (*models.Item, error) {
	ctx = ensureContext(ctx)

	if !itemType.Valid() {
		return nil, appErrors.ErrInvalidItemType
	}
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.NewBadRequest("item id is required")
	}

	var item models.Item
	err := s.db.WithContext(ctx).
		Take(&item, "id = ? AND type = ?", id, itemType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("item service: get %s/%s: %w", itemType, id, err)
	}

	return &item, nil
}

// run executes a filtered query with the shared count + page/limit contract.
func (s *ItemService) run(query *gorm.DB, order string, page, limit int) (*ListResult, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("item service: count: %w", err)
	}

	paged := query.Session(&gorm.Session{}).Order(order)
	if limit > 0 {
		paged = paged.Offset((page - 1) * limit).Limit(limit)
	}

	items := make([]models.Item, 0)
	if err := paged.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("item service: list: %w", err)
	}

	return &ListResult{
		Items:      items,
		Count:      len(items),
		TotalCount: total,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

func validatePagination(page, limit int) error {
	if limit < 0 || (limit > 0 && page < 1) || (limit == 0 && page < 0) {
		return appErrors.ErrInvalidPagination
	}
	return nil
}

func buildPagination(page, limit int, total int64) Pagination {
	if limit <= 0 {
		return Pagination{Page: 1, Limit: 0, TotalPages: 1}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

func emptyResult(page, limit int) *ListResult {
	result := &ListResult{Items: []models.Item{}, Pagination: buildPagination(page, limit, 0)}
	return result
}

func filterValid(items []models.Item) []models.Item {
	out := items[:0:0]
	for _, item := range items {
		if item.ID == "" || item.Name == "" || !item.Type.Valid() {
			continue
		}
		out = append(out, item)
	}
	return out
}

func countStored(items []models.Item) {
	var vod, series float64
	for _, item := range items {
		if item.Type == models.ItemTypeVod {
			vod++
		} else {
			series++
		}
	}
	if vod > 0 {
		metrics.ItemsStored.WithLabelValues(string(models.ItemTypeVod)).Add(vod)
	}
	if series > 0 {
		metrics.ItemsStored.WithLabelValues(string(models.ItemTypeSeries)).Add(series)
	}
}
