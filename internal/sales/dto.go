package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// SaleDTO exposes a recorded sale with its snapshot lines.
type SaleDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	InvoiceNo   string          `json:"invoice_no"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []SaleItemDTO   `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SaleItemDTO is one sold line as captured at sale time.
type SaleItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    *uuid.UUID      `json:"item_id,omitempty"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleLineInput references a menu item and the quantity sold.
type SaleLineInput struct {
	ItemID uuid.UUID
	Qty    int
}

// CreateSaleInput carries the lines for a new sale.
type CreateSaleInput struct {
	Lines []SaleLineInput
}

// ListSalesInput filters the sales listing by day range.
type ListSalesInput struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// SalesPageDTO bundles one page of sales with range-wide aggregates.
type SalesPageDTO struct {
	Sales        []SaleDTO       `json:"sales"`
	TotalCount   int64           `json:"total_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// FromModel maps a persisted sale into a DTO.
func FromModel(m *models.Sale) *SaleDTO {
	if m == nil {
		return nil
	}
	items := make([]SaleItemDTO, 0, len(m.Items))
	for _, line := range m.Items {
		items = append(items, SaleItemDTO{
			ID:        line.ID,
			ItemID:    line.ItemID,
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return &SaleDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		InvoiceNo:   m.InvoiceNo,
		TotalAmount: m.TotalAmount,
		Items:       items,
		CreatedAt:   m.CreatedAt,
	}
}

// FromModels maps a slice of sales into DTOs.
func FromModels(rows []models.Sale) []SaleDTO {
	out := make([]SaleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
