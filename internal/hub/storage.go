package hub

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// CollectionRecord is one checkpointed collection document.
type CollectionRecord struct {
	ID        string `gorm:"primaryKey;size:128"`
	Content   []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName overrides the table name used by GORM
func (CollectionRecord) TableName() string {
	return "collections"
}

// Storage persists collection documents through GORM
type Storage struct {
	db *gorm.DB
}

// OpenStorage connects to the configured backend and migrates the schema
func OpenStorage(cfg StorageConfig) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	if err := db.AutoMigrate(&CollectionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// LoadAll returns every checkpointed collection
func (s *Storage) LoadAll(ctx context.Context) ([]CollectionRecord, error) {
	var records []CollectionRecord
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	return records, nil
}

// Upsert writes the current document bytes for a collection
func (s *Storage) Upsert(ctx context.Context, id string, content []byte) error {
	record := CollectionRecord{ID: id, Content: content, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to checkpoint collection %s: %w", id, err)
	}
	return nil
}

// Delete removes a collection's checkpoint
func (s *Storage) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&CollectionRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
