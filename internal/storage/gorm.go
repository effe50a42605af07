package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/internal/models"
)

var _ fiber.Storage = (*GormStorage)(nil)

// GormStorage keeps expiring entries in the storage_entries table.
type GormStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStorage wraps a migrated connection.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db, now: time.Now}
}

// Get returns the value for key, or nil when it is missing or expired.
func (s *GormStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	var entry models.StorageEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if entry.Expired(s.now()) {
		return nil, nil
	}
	return entry.Value, nil
}

// Set upserts key. An exp of zero keeps the entry until it is deleted.
func (s *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	entry := models.StorageEntry{Key: key, Value: val}
	if exp > 0 {
		at := s.now().Add(exp)
		entry.ExpiresAt = &at
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// Delete removes key. Deleting a missing key is not an error.
func (s *GormStorage) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&models.StorageEntry{}).Error
}

// Reset removes every entry.
func (s *GormStorage) Reset() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StorageEntry{}).Error
}

// Close closes the underlying connection pool.
func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Purge deletes expired rows.
func (s *GormStorage) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&models.StorageEntry{})
	return res.RowsAffected, res.Error
}
