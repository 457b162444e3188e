// Package persistence provides catalog store implementations.
package persistence

import (
	"time"

	"github.com/helixml/gitsearch/internal/database"
)

// EntryModel represents a catalog entry row. Rows are ordered by ID.
type EntryModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	RepositoryURL string    `gorm:"column:repository_url;index;size:2048"`
	FileName      string    `gorm:"column:file_name;size:1024"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

// TableName returns the table name.
func (EntryModel) TableName() string {
	return "catalog_entries"
}

// IngestionErrorModel represents an error log row. Rows are ordered by ID.
type IngestionErrorModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	RepositoryURL string    `gorm:"column:repository_url;size:2048"`
	Message       string    `gorm:"column:message;type:text"`
	Kind          string    `gorm:"column:kind;index;size:32"`
	BatchID       string    `gorm:"column:batch_id;index;size:64"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
}

// TableName returns the table name.
func (IngestionErrorModel) TableName() string {
	return "ingestion_errors"
}

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&EntryModel{},
		&IngestionErrorModel{},
	)
}
