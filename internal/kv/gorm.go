package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipment-tracker-backend/internal/model"
)

// gormStore implements Store on top of the kv_entries table.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed key-value store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where(&model.KVEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *gormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
