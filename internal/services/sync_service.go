package services

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/internal/xtream"
	"github.com/kmarchat/streamgate/pkg/logger"
)

// TypeSyncResult reports the outcome of syncing a single item type.
type TypeSyncResult struct {
	Fetched int      `json:"fetched"`
	Stored  int      `json:"stored"`
	Errors  []string `json:"errors,omitempty"`
}

// SyncResults groups per-type outcomes of a full sync.
type SyncResults struct {
	Vod    TypeSyncResult `json:"vod"`
	Series TypeSyncResult `json:"series"`
}

// SyncReport is the aggregate result of a full catalog sync.
type SyncReport struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Results SyncResults `json:"results"`
}

// SyncService performs full catalog refreshes from the upstream
// provider, replacing stored items per type.
type SyncService struct {
	fetcher xtream.Fetcher
	cache   *cache.ResponseCache
	items   *ItemService
	baseURL string
	log     *zap.Logger
}

func NewSyncService(fetcher xtream.Fetcher, responseCache *cache.ResponseCache, items *ItemService, baseURL string) *SyncService {
	return &SyncService{
		fetcher: fetcher,
		cache:   responseCache,
		items:   items,
		baseURL: baseURL,
		log:     logger.WithModule("services.sync"),
	}
}

// SyncAll refreshes both catalogs. Each type is synced independently so
// one upstream failure does not abort the other. The report succeeds
// when at least one type stored items.
func (s *SyncService) SyncAll(ctx context.Context) SyncReport {
	ctx = ensureContext(ctx)

	report := SyncReport{
		Results: SyncResults{
			Vod:    s.syncKind(ctx, PayloadVodList),
			Series: s.syncKind(ctx, PayloadSeriesList),
		},
	}

	stored := report.Results.Vod.Stored + report.Results.Series.Stored
	if stored > 0 {
		report.Success = true
		report.Message = "sync completed"
	} else {
		report.Message = "sync failed: no items stored"
	}

	s.log.Info("catalog sync finished",
		zap.Bool("success", report.Success),
		zap.Int("vod_stored", report.Results.Vod.Stored),
		zap.Int("series_stored", report.Results.Series.Stored))

	return report
}

func (s *SyncService) syncKind(ctx context.Context, kind PayloadKind) TypeSyncResult {
	result := TypeSyncResult{}

	payload, err := s.fetcher.FetchAction(ctx, kind.Action(), url.Values{})
	if err != nil {
		s.log.Error("upstream fetch failed during sync",
			zap.String("kind", kind.String()),
			zap.Error(err))
		result.Errors = append(result.Errors, "upstream fetch failed: "+err.Error())
		return result
	}

	items, fetched, extractErrs := ExtractItems(kind, payload)
	result.Fetched = fetched
	result.Errors = append(result.Errors, extractErrs...)

	if len(items) == 0 {
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, "listing contained no usable items")
		}
		return result
	}

	stored, err := s.items.ReplaceAll(ctx, kind.ItemType(), items)
	if err != nil {
		s.log.Error("failed to replace stored items",
			zap.String("kind", kind.String()),
			zap.Error(err))
		result.Errors = append(result.Errors, "store failed: "+err.Error())
		return result
	}
	result.Stored = stored

	// Refresh the cached listing too so browse and passthrough agree.
	if key, keyErr := cache.ActionKey(s.baseURL, kind.Action(), nil); keyErr == nil {
		s.cache.Set(ctx, key, payload)
	}

	return result
}
