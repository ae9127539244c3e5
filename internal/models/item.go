package models

import (
	"strings"
	"time"
)

// ItemType distinguishes the two catalog listing shapes the provider exposes.
type ItemType string

const (
	ItemTypeVod    ItemType = "vod"
	ItemTypeSeries ItemType = "series"
)

// Valid reports whether the type is one of the two known catalog types.
func (t ItemType) Valid() bool {
	return t == ItemTypeVod || t == ItemTypeSeries
}

// ParseItemType normalises and validates a caller-supplied type string.
func ParseItemType(raw string) (ItemType, bool) {
	t := ItemType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// Item is a structured catalog record projected from upstream listings.
// The provider catalog id together with the type forms the row identity;
// re-inserting the same pair overwrites in place.
type Item struct {
	ID         string   `gorm:"primaryKey;size:64" json:"id"`
	Type       ItemType `gorm:"primaryKey;size:16" json:"type"`
	Name       string   `gorm:"size:512;not null;index" json:"name"`
	PosterURL  *string  `gorm:"size:1024" json:"poster_url,omitempty"`
	CategoryID *string  `gorm:"size:64;index" json:"category_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
