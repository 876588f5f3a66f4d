package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type productRepository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error)
	ListByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	CreateBatchWithTx(tx *gorm.DB, products []models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}

type accessChecker interface {
	HasAccess(ctx context.Context, actor *access.Actor, storeID uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// objectStore is the subset of the image store the service needs. Nil-able;
// deployments without object storage skip cleanup.
type objectStore interface {
	Delete(ctx context.Context, objectKey string) error
}

// Service exposes product operations for one resolved store.
type Service interface {
	List(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, storeID, id uuid.UUID) error
	Copy(ctx context.Context, actor *access.Actor, sourceStoreID uuid.UUID, input CopyProductsInput) ([]ProductDTO, error)
}

type service struct {
	repo   productRepository
	guard  accessChecker
	tx     txRunner
	images objectStore
	logg   *logger.Logger
}

// NewService builds a product service. The image store may be nil.
func NewService(repo productRepository, guard accessChecker, tx txRunner, images objectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("access guard required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, guard: guard, tx: tx, images: images, logg: logg}, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(rows), nil
}

func (s *service) GetByID(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	product := &models.Product{
		StoreID:        storeID,
		Name:           name,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		ImageObjectKey: input.ImageObjectKey,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.ImageObjectKey != nil {
		product.ImageObjectKey = input.ImageObjectKey
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

// Delete removes the row first; object cleanup afterwards is best-effort
// because the row mutation has already committed.
func (s *service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	if s.images != nil && product.ImageObjectKey != nil && *product.ImageObjectKey != "" {
		if err := s.images.Delete(ctx, *product.ImageObjectKey); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "object_key", *product.ImageObjectKey), "image cleanup failed after product delete")
		}
	}
	return nil
}

// Copy duplicates products from the resolved store into a target store the
// actor can access. New rows get fresh ids; the image URL is carried over.
func (s *service) Copy(ctx context.Context, actor *access.Actor, sourceStoreID uuid.UUID, input CopyProductsInput) ([]ProductDTO, error) {
	if len(input.ProductIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_ids is required")
	}
	if input.TargetStoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target_store_id is required")
	}

	ok, err := s.guard.HasAccess(ctx, actor, input.TargetStoreID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "target store not found")
	}

	sources, err := s.repo.ListByIDs(ctx, sourceStoreID, input.ProductIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(sources) != len(input.ProductIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more products not found")
	}

	copies := make([]models.Product, 0, len(sources))
	for _, src := range sources {
		copies = append(copies, models.Product{
			StoreID:        input.TargetStoreID,
			Name:           src.Name,
			Description:    src.Description,
			ImageURL:       src.ImageURL,
			ImageObjectKey: src.ImageObjectKey,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateBatchWithTx(tx, copies)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product name already exists in target store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "copy products")
	}

	return FromModels(copies), nil
}
