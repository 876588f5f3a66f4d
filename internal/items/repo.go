package items

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles item persistence. Every query filters by store id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to item operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStore returns the store's items ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Item, error) {
	var rows []models.Item
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads an item scoped to the store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Item, error) {
	var row models.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByIDsWithTx loads the given items scoped to the store in a transaction.
func (r *Repository) ListByIDsWithTx(tx *gorm.DB, storeID uuid.UUID, ids []uuid.UUID) ([]models.Item, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Item
	err := tx.
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new item row.
func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// Update saves the provided item.
func (r *Repository) Update(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item scoped to the store.
func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Item{}).Error
}

// DecrementStock applies a single clamped decrement. The UPDATE is atomic so
// concurrent sales cannot drive stock negative or lose updates.
func (r *Repository) DecrementStock(ctx context.Context, storeID, id uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", qty))
	return result.RowsAffected, result.Error
}

// DecrementStockWithTx is DecrementStock inside the caller's transaction.
func (r *Repository) DecrementStockWithTx(tx *gorm.DB, storeID, id uuid.UUID, qty int) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	result := tx.
		Model(&models.Item{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", qty))
	return result.RowsAffected, result.Error
}
