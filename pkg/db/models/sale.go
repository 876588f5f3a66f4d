package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale aggregates line items sold in one transaction. The invoice number is
// unique per day per store (INV-YYYYMMDD-NNN).
type Sale struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_sales_store_invoice"`
	InvoiceNo   string          `gorm:"column:invoice_no;not null;uniqueIndex:idx_sales_store_invoice"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Items       []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// SaleItem snapshots one sold line; name and unit price are copied from the
// item at sale time so later edits do not rewrite history.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ItemID    *uuid.UUID      `gorm:"column:item_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	Qty       int             `gorm:"column:qty;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}
