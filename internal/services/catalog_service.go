package services

import (
	"context"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kmarchat/streamgate/internal/cache"
	"github.com/kmarchat/streamgate/internal/xtream"
	"github.com/kmarchat/streamgate/pkg/logger"
)

// CatalogService serves provider payloads through the response cache.
// Cache misses are fetched from the upstream provider, deduplicated so
// that concurrent requests for the same action trigger a single fetch.
type CatalogService struct {
	fetcher xtream.Fetcher
	cache   *cache.ResponseCache
	items   *ItemService
	baseURL string
	group   singleflight.Group
	log     *zap.Logger
}

func NewCatalogService(fetcher xtream.Fetcher, responseCache *cache.ResponseCache, items *ItemService, baseURL string) *CatalogService {
	return &CatalogService{
		fetcher: fetcher,
		cache:   responseCache,
		items:   items,
		baseURL: baseURL,
		log:     logger.WithModule("services.catalog"),
	}
}

// GetAction returns the cached payload for an upstream action, fetching
// and caching it on a miss. Cache keys never contain credentials.
func (s *CatalogService) GetAction(ctx context.Context, action string, params url.Values) ([]byte, error) {
	return s.get(ctx, action, params, 0)
}

// GetListing returns the cached listing for a payload kind. When the
// listing has to be fetched, the items it contains are stored as a side
// effect; cache hits serve the payload untouched.
func (s *CatalogService) GetListing(ctx context.Context, kind PayloadKind, params url.Values) ([]byte, error) {
	return s.get(ctx, kind.Action(), params, kind)
}

// get serves one action through the cache. A zero kind means plain
// passthrough; a set kind has the fetched listing's items stored inside
// the flight function, so only the caller that performed the fetch pays
// the extraction cost.
func (s *CatalogService) get(ctx context.Context, action string, params url.Values, kind PayloadKind) ([]byte, error) {
	ctx = ensureContext(ctx)

	key, err := cache.ActionKey(s.baseURL, action, params)
	if err != nil {
		return nil, err
	}

	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight lock: a concurrent caller may have
		// populated the entry while this one was queued.
		if payload, ok := s.cache.Get(ctx, key); ok {
			return payload, nil
		}

		payload, err := s.fetcher.FetchAction(ctx, action, params)
		if err != nil {
			return nil, err
		}

		s.cache.Set(ctx, key, payload)
		if kind != 0 {
			s.storeListing(ctx, kind, payload)
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// storeListing extracts and upserts the items of a freshly fetched
// listing. Failures never fail the request; the payload is served as
// fetched.
func (s *CatalogService) storeListing(ctx context.Context, kind PayloadKind, payload []byte) {
	items, fetched, extractErrs := ExtractItems(kind, payload)
	if len(extractErrs) > 0 {
		s.log.Warn("listing extraction reported errors",
			zap.String("kind", kind.String()),
			zap.Int("fetched", fetched),
			zap.Strings("errors", extractErrs))
	}
	if len(items) == 0 {
		return
	}
	if err := s.items.UpsertBatch(ctx, items); err != nil {
		s.log.Warn("failed to store extracted items",
			zap.String("kind", kind.String()),
			zap.Int("count", len(items)),
			zap.Error(err))
	}
}
