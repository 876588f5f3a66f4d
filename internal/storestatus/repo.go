package storestatus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles store status persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store status operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByStoreID loads the status row for the store.
func (r *Repository) FindByStoreID(ctx context.Context, storeID uuid.UUID) (*models.StoreStatus, error) {
	var row models.StoreStatus
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a status row. A concurrent first read may have inserted it
// already, so conflicts on the primary key are ignored.
func (r *Repository) Create(ctx context.Context, status *models.StoreStatus) error {
	if status == nil {
		return fmt.Errorf("status is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(status).Error
}

// Update saves the provided status row.
func (r *Repository) Update(ctx context.Context, status *models.StoreStatus) error {
	if status == nil {
		return fmt.Errorf("status is required")
	}
	return r.db.WithContext(ctx).Save(status).Error
}
