package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// StoreDTO exposes tenant data in API responses.
type StoreDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	IsDefault      bool      `json:"is_default"`
	IsActive       bool      `json:"is_active"`
	InvoiceName    *string   `json:"invoice_name,omitempty"`
	InvoiceAddress *string   `json:"invoice_address,omitempty"`
	InvoicePhone   *string   `json:"invoice_phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateStoreInput holds creation-time data for a new store.
type CreateStoreInput struct {
	Name           string
	Slug           string
	IsDefault      bool
	IsActive       *bool
	InvoiceName    *string
	InvoiceAddress *string
	InvoicePhone   *string
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name           *string
	Slug           *string
	IsDefault      *bool
	IsActive       *bool
	InvoiceName    *string
	InvoiceAddress *string
	InvoicePhone   *string
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:             m.ID,
		Name:           m.Name,
		Slug:           m.Slug,
		IsDefault:      m.IsDefault,
		IsActive:       m.IsActive,
		InvoiceName:    m.InvoiceName,
		InvoiceAddress: m.InvoiceAddress,
		InvoicePhone:   m.InvoicePhone,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromModels maps a slice of stores into DTOs.
func FromModels(rows []models.Store) []StoreDTO {
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
