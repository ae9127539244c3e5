package models

import (
	"time"
)

// CacheEntry represents a cached upstream response persisted in the database.
// Hit statistics are updated on every successful read so the admin surface can
// report cache effectiveness.
type CacheEntry struct {
	Key            string    `gorm:"primaryKey;size:512"`
	Value          []byte    `gorm:"type:blob"`
	ExpiresAt      time.Time `gorm:"index"`
	HitCount       int64     `gorm:"not null;default:0"`
	LastAccessedAt time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the entry is logically absent at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
