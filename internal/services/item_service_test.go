package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarchat/streamgate/internal/database/testutil"
	"github.com/kmarchat/streamgate/internal/models"
	appErrors "github.com/kmarchat/streamgate/pkg/errors"
)

func newTestItemService(t *testing.T) *ItemService {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := NewItemService(db)
	require.NoError(t, err)
	return service
}

func strPtr(s string) *string { return &s }

func makeItem(id string, itemType models.ItemType, name string) models.Item {
	return models.Item{ID: id, Type: itemType, Name: name}
}

func TestUpsertBatchIdempotent(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	batch := []models.Item{
		makeItem("1", models.ItemTypeVod, "First Movie"),
		makeItem("2", models.ItemTypeVod, "Second Movie"),
	}
	require.NoError(t, service.UpsertBatch(ctx, batch))

	// Same ids again with one renamed: overwrite in place, no duplicates.
	batch[1].Name = "Second Movie Remastered"
	batch[1].CategoryID = strPtr("9")
	require.NoError(t, service.UpsertBatch(ctx, batch))

	result, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.TotalCount)

	item, err := service.GetByID(ctx, "2", models.ItemTypeVod)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Second Movie Remastered", item.Name)
	require.NotNil(t, item.CategoryID)
	assert.Equal(t, "9", *item.CategoryID)
}

func TestUpsertBatchSkipsInvalidRows(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		makeItem("1", models.ItemTypeVod, "Valid"),
		makeItem("", models.ItemTypeVod, "No ID"),
		makeItem("3", "channel", "Bad Type"),
	}))

	result, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.TotalCount)

	// A batch with nothing valid is a no-op, not an error.
	require.NoError(t, service.UpsertBatch(ctx, nil))
}

func TestSameIDAcrossTypes(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		makeItem("42", models.ItemTypeVod, "Movie Forty Two"),
		makeItem("42", models.ItemTypeSeries, "Series Forty Two"),
	}))

	vod, err := service.GetByID(ctx, "42", models.ItemTypeVod)
	require.NoError(t, err)
	require.NotNil(t, vod)
	assert.Equal(t, "Movie Forty Two", vod.Name)

	series, err := service.GetByID(ctx, "42", models.ItemTypeSeries)
	require.NoError(t, err)
	require.NotNil(t, series)
	assert.Equal(t, "Series Forty Two", series.Name)
}

func TestReplaceAll(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		makeItem("1", models.ItemTypeVod, "Old Movie"),
		makeItem("2", models.ItemTypeVod, "Stale Movie"),
		makeItem("1", models.ItemTypeSeries, "Untouched Series"),
	}))

	stored, err := service.ReplaceAll(ctx, models.ItemTypeVod, []models.Item{
		makeItem("3", models.ItemTypeVod, "Fresh Movie"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	vod, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod})
	require.NoError(t, err)
	require.Len(t, vod.Items, 1)
	assert.Equal(t, "Fresh Movie", vod.Items[0].Name)

	// The other type survives the replacement.
	series, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeSeries})
	require.NoError(t, err)
	assert.EqualValues(t, 1, series.TotalCount)

	_, err = service.ReplaceAll(ctx, "bogus", nil)
	assert.ErrorIs(t, err, appErrors.ErrInvalidItemType)
}

func TestListByTypePagination(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	batch := make([]models.Item, 0, 25)
	for i := 1; i <= 25; i++ {
		batch = append(batch, makeItem(fmt.Sprintf("%d", i), models.ItemTypeVod, fmt.Sprintf("Movie %03d", i)))
	}
	require.NoError(t, service.UpsertBatch(ctx, batch))

	page1, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page1.Items, 10)
	assert.EqualValues(t, 25, page1.TotalCount)
	assert.Equal(t, 3, page1.Pagination.TotalPages)
	assert.True(t, page1.Pagination.HasNextPage)
	assert.False(t, page1.Pagination.HasPreviousPage)
	assert.Equal(t, "Movie 001", page1.Items[0].Name)

	page3, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Items, 5)
	assert.False(t, page3.Pagination.HasNextPage)
	assert.True(t, page3.Pagination.HasPreviousPage)

	// Page past the end is empty but valid.
	page9, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page9.Items)
	assert.EqualValues(t, 25, page9.TotalCount)

	// Limit omitted: the full set in one page.
	all, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod})
	require.NoError(t, err)
	assert.Len(t, all.Items, 25)
	assert.Equal(t, 1, all.Pagination.TotalPages)
}

func TestListByTypeCategoryFilter(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	itemWithCategory := func(id, name, category string) models.Item {
		item := makeItem(id, models.ItemTypeVod, name)
		item.CategoryID = &category
		return item
	}
	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		itemWithCategory("1", "Action One", "10"),
		itemWithCategory("2", "Action Two", "10"),
		itemWithCategory("3", "Drama One", "20"),
		makeItem("4", models.ItemTypeVod, "Uncategorized"),
	}))

	result, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, CategoryID: "10"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Action One", result.Items[0].Name)
	assert.Equal(t, "Action Two", result.Items[1].Name)

	empty, err := service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, CategoryID: "999"})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestListByTypeValidation(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	_, err := service.ListByType(ctx, ListOptions{Type: "live"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidItemType)

	_, err = service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, Page: 0, Limit: 10})
	assert.ErrorIs(t, err, appErrors.ErrInvalidPagination)

	_, err = service.ListByType(ctx, ListOptions{Type: models.ItemTypeVod, Page: 1, Limit: -1})
	assert.ErrorIs(t, err, appErrors.ErrInvalidPagination)
}

func TestSearchByName(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		makeItem("1", models.ItemTypeVod, "The Dark Tower"),
		makeItem("2", models.ItemTypeVod, "Darkest Hour"),
		makeItem("3", models.ItemTypeSeries, "Dark"),
		makeItem("4", models.ItemTypeSeries, "Bright Lights"),
	}))

	// Case-insensitive substring match across both types, ordered by type then name.
	result, err := service.SearchByName(ctx, SearchOptions{Query: "DARK"})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, models.ItemTypeSeries, result.Items[0].Type)
	assert.Equal(t, "Dark", result.Items[0].Name)
	assert.Equal(t, models.ItemTypeVod, result.Items[1].Type)

	typed, err := service.SearchByName(ctx, SearchOptions{Query: "dark", Type: models.ItemTypeSeries})
	require.NoError(t, err)
	require.Len(t, typed.Items, 1)
	assert.Equal(t, "Dark", typed.Items[0].Name)

	// Blank query is an empty result, not a full scan.
	blank, err := service.SearchByName(ctx, SearchOptions{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, blank.Items)
	assert.EqualValues(t, 0, blank.TotalCount)
}

func TestSearchByNameEscapesWildcards(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		makeItem("1", models.ItemTypeVod, "100% Wolf"),
		makeItem("2", models.ItemTypeVod, "100 Meters"),
	}))

	result, err := service.SearchByName(ctx, SearchOptions{Query: "100%"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "100% Wolf", result.Items[0].Name)
}

func TestGetByID(t *testing.T) {
	service := newTestItemService(t)
	ctx := context.Background()

	require.NoError(t, service.UpsertBatch(ctx, []models.Item{
		makeItem("7", models.ItemTypeSeries, "Found Series"),
	}))

	item, err := service.GetByID(ctx, "7", models.ItemTypeSeries)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Found Series", item.Name)

	// A miss is nil, nil.
	missing, err := service.GetByID(ctx, "7", models.ItemTypeVod)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = service.GetByID(ctx, "", models.ItemTypeVod)
	require.Error(t, err)

	_, err = service.GetByID(ctx, "7", "nope")
	assert.ErrorIs(t, err, appErrors.ErrInvalidItemType)
}
