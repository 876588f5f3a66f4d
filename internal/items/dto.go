package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// ItemDTO exposes menu item data in API responses.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    *string         `json:"image_url,omitempty"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateItemInput holds creation-time data for a new item.
type CreateItemInput struct {
	Name        string
	Price       decimal.Decimal
	Stock       int
	ProductID   *uuid.UUID
	CategoryID  *uuid.UUID
	IsAvailable *bool
}

// UpdateItemInput captures the allowed item fields for mutation.
type UpdateItemInput struct {
	Name        *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uuid.UUID
	IsAvailable *bool
}

// FromModel maps the persisted item into a DTO.
func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		ProductID:   m.ProductID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Price:       m.Price,
		Stock:       m.Stock,
		ImageURL:    m.ImageURL,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromModels maps a slice of items into DTOs.
func FromModels(rows []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
