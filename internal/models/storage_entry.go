package models

import "time"

// StorageEntry is one expiring key/value pair of the ephemeral session storage.
type StorageEntry struct {
	BaseModel
	Key       string     `gorm:"uniqueIndex;size:255;not null" json:"key"`
	Value     []byte     `json:"value"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`
}

// TableName keeps the table name independent of the struct name.
func (StorageEntry) TableName() string {
	return "storage_entries"
}

// Expired reports whether the entry is past its expiry at now.
func (e StorageEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}
