package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a shared name/image template items can reference.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID        uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_products_store_name"`
	Name           string    `gorm:"column:name;not null;uniqueIndex:idx_products_store_name"`
	Description    *string   `gorm:"column:description"`
	ImageURL       *string   `gorm:"column:image_url"`
	ImageObjectKey *string   `gorm:"column:image_object_key"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
