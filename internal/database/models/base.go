package models

import (
	"time"

	"gorm.io/gorm"
)

// Base model with numeric primary key, timestamps and a soft-delete marker.
// A non-null DeletedAt tombstones the row: it is excluded from default reads
// but still participates in uniqueness checks.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
