package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles product persistence. Every query filters by store id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to product operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStore returns the store's products ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a product scoped to the store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByIDs loads the given products scoped to the store.
func (r *Repository) ListByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// CreateBatchWithTx inserts the products inside the given transaction.
func (r *Repository) CreateBatchWithTx(tx *gorm.DB, products []models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if len(products) == 0 {
		return nil
	}
	return tx.Create(&products).Error
}

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product scoped to the store; items keep their rows with a
// nulled product reference.
func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Product{}).Error
}
