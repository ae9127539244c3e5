package database

import (
	"gorm.io/gorm"

	"github.com/kmarchat/streamgate/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// Schema creation is idempotent so it is safe to run on every start-up.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.CacheEntry{},
		&models.Item{},
	); err != nil {
		return err
	}

	return createIndexes(db)
}

// createIndexes adds the composite lookup indexes the query engine relies on.
// gorm's tag-based indexes cover single columns; the browse path filters by
// type plus category and orders by name, which needs composite coverage.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_items_type_name ON items(type, name)",
		"CREATE INDEX IF NOT EXISTS idx_items_type_category ON items(type, category_id)",
		"CREATE INDEX IF NOT EXISTS idx_cache_entries_last_accessed ON cache_entries(last_accessed_at)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
