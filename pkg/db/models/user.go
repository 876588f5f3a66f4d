package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/enums"
)

// User mirrors an identity verified by the external provider. The password
// hash is a local fallback credential only; the provider owns authentication.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	DisplayName  string         `gorm:"column:display_name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'USER'"`
	ExternalID   *string        `gorm:"column:external_id;uniqueIndex"`
	StoreAccess  []StoreAccess  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
