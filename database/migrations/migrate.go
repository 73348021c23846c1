package migrations

import (
	"go-task-organizer/internal/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the organizer tables.
func Migrate(db *gorm.DB) error {
	// Auto migrate tables
	return db.AutoMigrate(models.Records()...)
}
