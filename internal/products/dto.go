package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// ProductDTO exposes product template data in API responses.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductInput holds creation-time data for a new product.
type CreateProductInput struct {
	Name           string
	Description    *string
	ImageURL       *string
	ImageObjectKey *string
}

// UpdateProductInput captures the allowed product fields for mutation.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	ImageURL       *string
	ImageObjectKey *string
}

// CopyProductsInput names the products to duplicate and the destination store.
type CopyProductsInput struct {
	ProductIDs    []uuid.UUID
	TargetStoreID uuid.UUID
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		Name:        m.Name,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromModels maps a slice of products into DTOs.
func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
