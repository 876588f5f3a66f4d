package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindActiveBySlug loads an active store by slug.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active", slug).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// FindActiveDefault loads the store flagged as the public default.
func (r *Repository) FindActiveDefault(ctx context.Context) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("is_default AND is_active").
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns all stores ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Order("name").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// ListActive returns every active store ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("is_active").
		Order("name").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// ListActiveByIDs returns the active stores among the provided ids.
func (r *Repository) ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Store, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active", ids).
		Order("name").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}

// FindByIDWithTx loads a store using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Store, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var store models.Store
	if err := tx.First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// SetDefaultWithTx moves the default flag to the given store. Unset and set
// run in the caller's transaction so the partial unique index on is_default
// cannot reject the swap and readers never observe two defaults.
func (r *Repository) SetDefaultWithTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	err := tx.Model(&models.Store{}).
		Where("is_default AND id <> ?", id).
		Update("is_default", false).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Store{}).
		Where("id = ?", id).
		Update("is_default", true).Error
}

// UpdateWithTx persists the store using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, store *models.Store) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return tx.Save(store).Error
}

// DeleteWithTx removes the store row; FKs cascade to scoped resources.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Delete(&models.Store{}, "id = ?", id).Error
}
