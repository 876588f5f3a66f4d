package categories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles category persistence. Every query filters by store id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to category operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStore returns the store's categories ordered by sort order then name.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("sort_order, name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a category scoped to the store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create persists a new category row.
func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	if category == nil {
		return fmt.Errorf("category is required")
	}
	return r.db.WithContext(ctx).Create(category).Error
}

// Update saves the provided category.
func (r *Repository) Update(ctx context.Context, category *models.Category) error {
	if category == nil {
		return fmt.Errorf("category is required")
	}
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category scoped to the store; items keep their rows with a
// nulled category reference.
func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Category{}).Error
}
