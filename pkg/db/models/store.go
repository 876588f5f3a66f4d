package models

import (
	"time"

	"github.com/google/uuid"
)

// Store represents the canonical tenant model. At most one store holds the
// default flag; a partial unique index enforces it at the schema level.
type Store struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	Slug           string    `gorm:"column:slug;not null;uniqueIndex"`
	IsDefault      bool      `gorm:"column:is_default;not null;default:false"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	InvoiceName    *string   `gorm:"column:invoice_name"`
	InvoiceAddress *string   `gorm:"column:invoice_address"`
	InvoicePhone   *string   `gorm:"column:invoice_phone"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
