package storestatus

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// StatusDTO is the public open/closed banner for a store.
type StatusDTO struct {
	StoreID   uuid.UUID `json:"store_id"`
	IsOpen    bool      `json:"is_open"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateStatusInput captures the updatable banner fields.
type UpdateStatusInput struct {
	IsOpen  *bool
	Message *string
}

// FromModel maps the persisted status into a DTO.
func FromModel(m *models.StoreStatus) *StatusDTO {
	if m == nil {
		return nil
	}
	return &StatusDTO{
		StoreID:   m.StoreID,
		IsOpen:    m.IsOpen,
		Message:   m.Message,
		UpdatedAt: m.UpdatedAt,
	}
}
