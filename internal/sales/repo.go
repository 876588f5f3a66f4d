package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles sale persistence. Every query filters by store id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to sale operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts the sale and its lines inside the caller's transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, sale *models.Sale) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if sale == nil {
		return fmt.Errorf("sale is required")
	}
	return tx.Create(sale).Error
}

// LastInvoiceNoForPrefixWithTx returns the highest invoice number already
// issued under the given day prefix, or "" when the day has no sales yet.
// Ordering by length first keeps the comparison numeric once the trailing
// sequence grows beyond three digits ("-1000" outranks "-999").
func (r *Repository) LastInvoiceNoForPrefixWithTx(tx *gorm.DB, storeID uuid.UUID, dayPrefix string) (string, error) {
	if tx == nil {
		return "", gorm.ErrInvalidTransaction
	}
	var rows []string
	err := tx.
		Model(&models.Sale{}).
		Where("store_id = ? AND invoice_no LIKE ?", storeID, dayPrefix+"-%").
		Order("length(invoice_no) DESC, invoice_no DESC").
		Limit(1).
		Pluck("invoice_no", &rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0], nil
}

// FindByID loads a sale with its lines, scoped to the store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Sale, error) {
	var row models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND store_id = ?", id, storeID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByStore returns one page of the store's sales, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.scoped(ctx, storeID, filter).
		Preload("Items").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SummaryByStore computes the matching sale count and revenue over the whole
// filtered range, independent of pagination.
func (r *Repository) SummaryByStore(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) (int64, decimal.Decimal, error) {
	var row struct {
		Count   int64
		Revenue decimal.Decimal
	}
	err := r.scoped(ctx, storeID, filter).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return row.Count, row.Revenue, nil
}

func (r *Repository) scoped(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("store_id = ?", storeID)
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", filter.To.UTC())
	}
	return q
}
