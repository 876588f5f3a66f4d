package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// CategoryDTO exposes menu category data in API responses.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCategoryInput holds creation-time data for a new category.
type CreateCategoryInput struct {
	Name      string
	SortOrder int
}

// UpdateCategoryInput captures the allowed category fields for mutation.
type UpdateCategoryInput struct {
	Name      *string
	SortOrder *int
}

// FromModel maps the persisted category into a DTO.
func FromModel(m *models.Category) *CategoryDTO {
	if m == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Name:      m.Name,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a slice of categories into DTOs.
func FromModels(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
