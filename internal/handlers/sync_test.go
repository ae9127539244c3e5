package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/internal/database/testutil"
	"github.com/kmarchat/streamgate/internal/models"
	"github.com/kmarchat/streamgate/internal/services"
)

func newSyncRouter(t *testing.T, fetcher *stubFetcher) (*gin.Engine, *services.ItemService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	responseCache, err := cache.NewResponseCache(db, cache.DefaultTTLPolicy())
	require.NoError(t, err)
	items, err := services.NewItemService(db)
	require.NoError(t, err)
	sync := services.NewSyncService(fetcher, responseCache, items, "http://provider.example.com")

	r := gin.New()
	r.POST("/api/sync", NewSyncHandler(sync).Sync)
	return r, items
}

func TestSyncEndpoint(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string][]byte{
		"get_vod_streams": []byte(`[{"stream_id": 1, "name": "Synced Movie"}]`),
		"get_series":      []byte(`[{"series_id": 2, "name": "Synced Series"}]`),
	}}
	r, items := newSyncRouter(t, fetcher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeResponse(t, w)
	require.True(t, payload.Success)

	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	var report services.SyncReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Results.Vod.Stored)
	assert.Equal(t, 1, report.Results.Series.Stored)

	stored, err := items.GetByID(context.Background(), "1", models.ItemTypeVod)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestSyncEndpointReportsFailure(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[string][]byte{}}
	r, _ := newSyncRouter(t, fetcher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeResponse(t, w)

	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	var report services.SyncReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.False(t, report.Success)
	assert.NotEmpty(t, report.Results.Vod.Errors)
}
