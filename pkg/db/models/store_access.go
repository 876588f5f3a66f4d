package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreAccess grants a non-admin user visibility into a store.
type StoreAccess struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_store_access_pair"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_store_access_pair"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
