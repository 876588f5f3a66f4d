package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreStatus is the public open/closed banner, one row per store,
// auto-created with defaults on first read.
type StoreStatus struct {
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;primaryKey"`
	IsOpen    bool      `gorm:"column:is_open;not null;default:true"`
	Message   string    `gorm:"column:message;not null;default:''"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
