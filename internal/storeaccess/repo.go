package storeaccess

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository exposes store-access grant persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether the user holds a grant for the store.
func (r *Repository) Exists(ctx context.Context, userID, storeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StoreAccess{}).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListStoreIDsForUser returns the store ids the user has grants for.
func (r *Repository) ListStoreIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.StoreAccess{}).
		Where("user_id = ?", userID).
		Pluck("store_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListForUser returns the full grant rows for the user.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.StoreAccess, error) {
	var grants []models.StoreAccess
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ReplaceForUserWithTx swaps the user's grant set wholesale inside the given
// transaction: delete all existing grants, then insert the new set. A
// concurrent reader never observes a partial set.
func (r *Repository) ReplaceForUserWithTx(tx *gorm.DB, userID uuid.UUID, storeIDs []uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.StoreAccess{}).Error; err != nil {
		return err
	}
	if len(storeIDs) == 0 {
		return nil
	}

	grants := make([]models.StoreAccess, 0, len(storeIDs))
	for _, storeID := range storeIDs {
		grants = append(grants, models.StoreAccess{UserID: userID, StoreID: storeID})
	}
	return tx.Create(&grants).Error
}

// DeleteForStoreWithTx removes every grant pointing at the store.
func (r *Repository) DeleteForStoreWithTx(tx *gorm.DB, storeID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("store_id = ?", storeID).Delete(&models.StoreAccess{}).Error
}
