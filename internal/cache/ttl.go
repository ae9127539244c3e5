package cache

import (
	"strings"
	"time"
)

// Marker substrings embedded in cache keys via the provider action name.
const (
	markerCategories = "_categories"
	markerSeriesInfo = "get_series_info"
	markerSeries     = "get_series"
)

// TTLPolicy maps a cache key to a time-to-live bucket. Category listings barely
// change, series detail payloads churn with new episodes, everything else sits
// in between.
type TTLPolicy struct {
	Categories time.Duration
	SeriesInfo time.Duration
	Series     time.Duration
	Default    time.Duration
}

// DefaultTTLPolicy returns the standard bucket durations.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Categories: 24 * time.Hour,
		SeriesInfo: 6 * time.Hour,
		Series:     12 * time.Hour,
		Default:    12 * time.Hour,
	}
}

// Resolve returns the TTL for a cache key. Rules are priority ordered and the
// first match wins; the result depends on the key alone.
func (p TTLPolicy) Resolve(key string) time.Duration {
	switch {
	case strings.Contains(key, markerCategories):
		return p.Categories
	case strings.Contains(key, markerSeriesInfo):
		return p.SeriesInfo
	case strings.Contains(key, markerSeries):
		return p.Series
	default:
		return p.Default
	}
}
