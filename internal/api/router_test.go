package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/internal/database/testutil"
	"github.com/kmarchat/streamgate/internal/services"
)

type noopFetcher struct{}

func (noopFetcher) FetchAction(context.Context, string, url.Values) ([]byte, error) {
	return nil, errors.New("upstream not reachable in tests")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	responseCache, err := cache.NewResponseCache(db, cache.DefaultTTLPolicy())
	if err != nil {
		t.Fatalf("response cache: %v", err)
	}
	items, err := services.NewItemService(db)
	if err != nil {
		t.Fatalf("item service: %v", err)
	}

	const baseURL = "http://provider.example.com"
	router, err := NewRouter(Deps{
		Cache:   responseCache,
		Items:   items,
		Catalog: services.NewCatalogService(noopFetcher{}, responseCache, items, baseURL),
		Sync:    services.NewSyncService(noopFetcher{}, responseCache, items, baseURL),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return router
}

func TestRouter_CoreRoutes(t *testing.T) {
	router := newTestRouter(t)

	// Health should respond
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /health, got %d", w.Code)
	}

	// Catalog browse on an empty table is a valid empty listing
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/items?type=vod", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /api/items, got %d", w.Code)
	}

	// Cache stats are always readable
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/cache/stats", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /api/cache/stats, got %d", w.Code)
	}

	// Unknown routes return a JSON 404
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/unknown", nil)
	router.ServeHTTP(w, req)
	if w.Code != 404 {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON 404 body, got %q", w.Header().Get("Content-Type"))
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Trigger a request to generate metrics
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health, got %d", rec.Code)
	}

	metricsRec := httptest.NewRecorder()
	metricsReq, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	if metricsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", metricsRec.Code)
	}
	if !strings.Contains(metricsRec.Body.String(), "streamgate_api_latency_seconds") {
		t.Fatalf("expected latency metric in /metrics output")
	}
}

func TestRouter_RequiresDependencies(t *testing.T) {
	if _, err := NewRouter(Deps{}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
