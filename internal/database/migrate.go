package database

import (
	"fmt"

	"tradepost/internal/middleware"
	"tradepost/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Item{},
		&models.Purchase{},
		&models.Message{},
	}
}

// Migrate creates any missing tables and indexes. It is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	middleware.Logger.Info("Database migration completed")
	return nil
}
