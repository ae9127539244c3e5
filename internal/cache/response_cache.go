package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kmarchat/streamgate/internal/models"
	"github.com/kmarchat/streamgate/pkg/logger"
	"github.com/kmarchat/streamgate/pkg/metrics"
)

// Stats aggregates read-only cache statistics for the admin surface.
type Stats struct {
	TotalEntries   int64 `json:"total_entries"`
	ExpiredEntries int64 `json:"expired_entries"`
	TotalHits      int64 `json:"total_hits"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// ResponseCache stores upstream responses in the database with per-key TTLs.
// Storage failures never propagate to callers: a failed read behaves like a
// miss and a failed write like a no-op, so the cache is a performance layer
// rather than a correctness dependency.
type ResponseCache struct {
	db     *gorm.DB
	policy TTLPolicy
	log    *zap.Logger
	now    func() time.Time
}

// Option customises the ResponseCache.
type Option func(*ResponseCache)

// WithClock overrides the clock, primarily for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewResponseCache constructs a database-backed response cache.
func NewResponseCache(db *gorm.DB, policy TTLPolicy, opts ...Option) (*ResponseCache, error) {
	if db == nil {
		return nil, errors.New("cache: db is required")
	}

	c := &ResponseCache{
		db:     db,
		policy: policy,
		log:    logger.WithModule("cache"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the stored value if present and not expired. Reading an expired
// entry deletes it as a side effect; a valid hit bumps the usage statistics.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var entry models.CacheEntry
	err := c.db.WithContext(ctx).Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.CacheOperations.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		metrics.CacheOperations.WithLabelValues("error").Inc()
		return nil, false
	}

	now := c.now()
	if entry.Expired(now) {
		if err := c.db.WithContext(ctx).Delete(&models.CacheEntry{}, "key = ?", key).Error; err != nil {
			c.log.Warn("expired entry delete failed", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheOperations.WithLabelValues("expired").Inc()
		return nil, false
	}

	if err := c.db.WithContext(ctx).Model(&models.CacheEntry{}).
		Where("key = ?", key).
		UpdateColumns(map[string]any{
			"hit_count":        gorm.Expr("hit_count + 1"),
			"last_accessed_at": now,
		}).Error; err != nil {
		c.log.Warn("hit stats update failed", zap.String("key", key), zap.Error(err))
	}

	metrics.CacheOperations.WithLabelValues("hit").Inc()
	return entry.Value, true
}

// Set upserts the value under key, deriving the expiry from the TTL policy.
// Overwriting an existing key resets its hit count.
func (c *ResponseCache) Set(ctx context.Context, key string, value []byte) {
	now := c.now()
	entry := models.CacheEntry{
		Key:            key,
		Value:          value,
		ExpiresAt:      now.Add(c.policy.Resolve(key)),
		HitCount:       0,
		LastAccessedAt: now,
	}

	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "hit_count", "last_accessed_at", "updated_at"}),
		}).Create(&entry).Error
	if err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear deletes all entries unconditionally.
func (c *ResponseCache) Clear(ctx context.Context) int64 {
	result := c.db.WithContext(ctx).Where("1 = 1").Delete(&models.CacheEntry{})
	if result.Error != nil {
		c.log.Warn("cache clear failed", zap.Error(result.Error))
		return 0
	}
	return result.RowsAffected
}

// ClearExpired deletes all entries whose expiry lies in the past and returns
// the number of rows removed.
func (c *ResponseCache) ClearExpired(ctx context.Context) int64 {
	result := c.db.WithContext(ctx).
		Where("expires_at < ?", c.now()).
		Delete(&models.CacheEntry{})
	if result.Error != nil {
		c.log.Warn("expired sweep failed", zap.Error(result.Error))
		return 0
	}
	return result.RowsAffected
}

// InvalidatePattern deletes all entries whose key contains the given substring.
// The match is case-sensitive.
func (c *ResponseCache) InvalidatePattern(ctx context.Context, pattern string) int64 {
	if strings.TrimSpace(pattern) == "" {
		return 0
	}

	// MySQL's default collations fold case on LIKE; SQLite needs
	// case_sensitive_like, which the sqlite opener sets via the DSN.
	predicate := "key LIKE ? ESCAPE '\\'"
	if c.db.Dialector.Name() == "mysql" {
		predicate = "BINARY `key` LIKE ? ESCAPE '\\'"
	}

	result := c.db.WithContext(ctx).
		Where(predicate, "%"+escapeLike(pattern)+"%").
		Delete(&models.CacheEntry{})
	if result.Error != nil {
		c.log.Warn("pattern invalidation failed", zap.String("pattern", pattern), zap.Error(result.Error))
		return 0
	}
	return result.RowsAffected
}

// ReadStats reports aggregate cache statistics. Failures degrade to zeroes.
func (c *ResponseCache) ReadStats(ctx context.Context) Stats {
	var stats Stats

	if err := c.db.WithContext(ctx).Model(&models.CacheEntry{}).
		Count(&stats.TotalEntries).Error; err != nil {
		c.log.Warn("stats query failed", zap.Error(err))
		return Stats{}
	}
	if err := c.db.WithContext(ctx).Model(&models.CacheEntry{}).
		Where("expires_at < ?", c.now()).
		Count(&stats.ExpiredEntries).Error; err != nil {
		c.log.Warn("stats query failed", zap.Error(err))
		return Stats{}
	}

	type sums struct {
		Hits int64
		Size int64
	}
	var s sums
	if err := c.db.WithContext(ctx).Model(&models.CacheEntry{}).
		Select("COALESCE(SUM(hit_count), 0) AS hits, COALESCE(SUM(LENGTH(value)), 0) AS size").
		Scan(&s).Error; err != nil {
		c.log.Warn("stats query failed", zap.Error(err))
		return Stats{}
	}

	stats.TotalHits = s.Hits
	stats.TotalSizeBytes = s.Size
	return stats
}

// escapeLike neutralises SQL LIKE wildcards so patterns match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
