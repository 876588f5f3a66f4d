package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gslug "github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	List(ctx context.Context) ([]models.Store, error)
	ListActive(ctx context.Context) ([]models.Store, error)
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Store, error)
	SetDefaultWithTx(tx *gorm.DB, id uuid.UUID) error
	UpdateWithTx(tx *gorm.DB, store *models.Store) error
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type accessChecker interface {
	HasAccess(ctx context.Context, actor *access.Actor, storeID uuid.UUID) (bool, error)
}

// Service exposes store operations.
type Service interface {
	List(ctx context.Context, actor *access.Actor) ([]StoreDTO, error)
	ListAccessible(ctx context.Context, actor *access.Actor) ([]StoreDTO, error)
	GetByID(ctx context.Context, actor *access.Actor, id uuid.UUID) (*StoreDTO, error)
	Create(ctx context.Context, actor *access.Actor, input CreateStoreInput) (*StoreDTO, error)
	Update(ctx context.Context, actor *access.Actor, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, actor *access.Actor, id uuid.UUID) error
	ValidateSelectable(ctx context.Context, actor *access.Actor, id uuid.UUID) (*StoreDTO, error)
}

type service struct {
	repo  storeRepository
	tx    txRunner
	guard accessChecker
}

// NewService builds a store service with the provided dependencies.
func NewService(repo storeRepository, tx txRunner, guard accessChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("access guard required")
	}
	return &service{repo: repo, tx: tx, guard: guard}, nil
}

func (s *service) List(ctx context.Context, actor *access.Actor) ([]StoreDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return FromModels(rows), nil
}

func (s *service) ListAccessible(ctx context.Context, actor *access.Actor) ([]StoreDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var rows []models.Store
	var err error
	if actor.IsAdmin() {
		rows, err = s.repo.ListActive(ctx)
	} else {
		rows, err = s.repo.ListActiveByIDs(ctx, actor.StoreIDs)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accessible stores")
	}
	return FromModels(rows), nil
}

func (s *service) GetByID(ctx context.Context, actor *access.Actor, id uuid.UUID) (*StoreDTO, error) {
	ok, err := s.guard.HasAccess(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		// denial reads as not-found so store existence does not leak
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) Create(ctx context.Context, actor *access.Actor, input CreateStoreInput) (*StoreDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	normalized, err := normalizeSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}

	store := &models.Store{
		Name:           name,
		Slug:           normalized,
		IsActive:       true,
		InvoiceName:    input.InvoiceName,
		InvoiceAddress: input.InvoiceAddress,
		InvoicePhone:   input.InvoicePhone,
	}
	if input.IsActive != nil {
		store.IsActive = *input.IsActive
	}

	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}

	if input.IsDefault {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.SetDefaultWithTx(tx, store.ID)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default store")
		}
		store.IsDefault = true
	}

	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, actor *access.Actor, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if input.IsDefault != nil && !*input.IsDefault {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot unset the default flag directly; promote another store instead")
	}

	var updated *models.Store
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			store.Name = name
		}
		if input.Slug != nil {
			normalized, err := normalizeSlug(*input.Slug, store.Name)
			if err != nil {
				return err
			}
			store.Slug = normalized
		}
		if input.IsActive != nil {
			if !*input.IsActive && store.IsDefault {
				return pkgerrors.New(pkgerrors.CodeConflict, "cannot deactivate the default store")
			}
			store.IsActive = *input.IsActive
		}
		if input.InvoiceName != nil {
			store.InvoiceName = input.InvoiceName
		}
		if input.InvoiceAddress != nil {
			store.InvoiceAddress = input.InvoiceAddress
		}
		if input.InvoicePhone != nil {
			store.InvoicePhone = input.InvoicePhone
		}

		if err := s.repo.UpdateWithTx(tx, store); err != nil {
			return err
		}

		if input.IsDefault != nil && *input.IsDefault && !store.IsDefault {
			if err := s.repo.SetDefaultWithTx(tx, store.ID); err != nil {
				return err
			}
			store.IsDefault = true
		}

		updated = store
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}

	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actor *access.Actor, id uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}
		if store.IsDefault {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete the default store")
		}
		return s.repo.DeleteWithTx(tx, id)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store")
	}
	return nil
}

func (s *service) ValidateSelectable(ctx context.Context, actor *access.Actor, id uuid.UUID) (*StoreDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found or inactive")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found or inactive")
	}

	ok, err := s.guard.HasAccess(ctx, actor, store.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found or inactive")
	}

	return FromModel(store), nil
}

func normalizeSlug(raw, fallbackName string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		candidate = fallbackName
	}
	normalized := gslug.Make(candidate)
	if normalized == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	return normalized, nil
}
