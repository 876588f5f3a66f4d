package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type categoryRepository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

// Service exposes category operations for one resolved store. Callers resolve
// and authorize the store before invoking; every row is stamped with it.
type Service interface {
	List(ctx context.Context, storeID uuid.UUID) ([]CategoryDTO, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateCategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type service struct {
	repo categoryRepository
}

// NewService builds a category service.
func NewService(repo categoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]CategoryDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category := &models.Category{
		StoreID:   storeID,
		Name:      name,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return FromModel(category), nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		category.Name = name
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return FromModel(category), nil
}

func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, storeID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}
