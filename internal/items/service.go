package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type itemRepository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Item, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	DecrementStock(ctx context.Context, storeID, id uuid.UUID, qty int) (int64, error)
}

type productReader interface {
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error)
}

// Service exposes item operations for one resolved store.
type Service interface {
	List(ctx context.Context, storeID uuid.UUID) ([]ItemDTO, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*ItemDTO, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	Decrement(ctx context.Context, storeID, id uuid.UUID, qty int) (*ItemDTO, error)
}

type service struct {
	repo     itemRepository
	products productReader
}

// NewService builds an item service.
func NewService(repo itemRepository, products productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]ItemDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return FromModels(rows), nil
}

func (s *service) GetByID(ctx context.Context, storeID, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return FromModel(item), nil
}

// Create stamps the row with the resolved store and denormalizes the image
// URL from the linked product once, at creation time.
func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	item := &models.Item{
		StoreID:     storeID,
		ProductID:   input.ProductID,
		CategoryID:  input.CategoryID,
		Name:        name,
		Price:       input.Price,
		Stock:       input.Stock,
		IsAvailable: true,
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}

	if input.ProductID != nil {
		product, err := s.products.FindByID(ctx, storeID, *input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		item.ImageURL = product.ImageURL
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return FromModel(item), nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		item.Name = name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		item.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		item.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		item.CategoryID = input.CategoryID
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return FromModel(item), nil
}

func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, storeID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

// Decrement clamps at zero via a single atomic UPDATE.
func (s *service) Decrement(ctx context.Context, storeID, id uuid.UUID, qty int) (*ItemDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	affected, err := s.repo.DecrementStock(ctx, storeID, id, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return s.GetByID(ctx, storeID, id)
}
