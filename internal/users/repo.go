package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
)

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateWithTx persists a new user row inside the given transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, user *models.User) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if user == nil {
		return fmt.Errorf("user is required")
	}
	return tx.Create(user).Error
}

// FindByID loads a user with their access grants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("StoreAccess").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by normalized email with their access grants.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("StoreAccess").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users with grants, ordered by email.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("StoreAccess").
		Order("email").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateWithTx persists the user inside the given transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, user *models.User) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if user == nil {
		return fmt.Errorf("user is required")
	}
	return tx.Omit("StoreAccess").Save(user).Error
}

// FindByIDWithTx loads a user inside the given transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var user models.User
	if err := tx.Preload("StoreAccess").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteWithTx removes the user row; grants cascade.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Delete(&models.User{}, "id = ?", id).Error
}
