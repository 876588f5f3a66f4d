package storestatus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type statusRepository interface {
	FindByStoreID(ctx context.Context, storeID uuid.UUID) (*models.StoreStatus, error)
	Create(ctx context.Context, status *models.StoreStatus) error
	Update(ctx context.Context, status *models.StoreStatus) error
}

type storeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service reads and updates the public open/closed banner.
type Service interface {
	Get(ctx context.Context, storeID uuid.UUID) (*StatusDTO, error)
	Update(ctx context.Context, storeID uuid.UUID, input UpdateStatusInput) (*StatusDTO, error)
}

type service struct {
	repo   statusRepository
	stores storeReader
}

// NewService builds a store status service.
func NewService(repo statusRepository, stores storeReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("status repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, stores: stores}, nil
}

// Get returns the store's status, creating the row with open defaults on
// first read.
func (s *service) Get(ctx context.Context, storeID uuid.UUID) (*StatusDTO, error) {
	status, err := s.repo.FindByStoreID(ctx, storeID)
	if err == nil {
		return FromModel(status), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store status")
	}

	fresh := &models.StoreStatus{StoreID: storeID, IsOpen: true}
	if err := s.repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store status")
	}
	// Re-read in case a concurrent first read won the insert.
	status, err = s.repo.FindByStoreID(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store status")
	}
	return FromModel(status), nil
}

// Update changes the banner. Only the default store's banner is editable.
func (s *service) Update(ctx context.Context, storeID uuid.UUID, input UpdateStatusInput) (*StatusDTO, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsDefault {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store status can only be updated for the default store")
	}

	current, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	status := &models.StoreStatus{
		StoreID: storeID,
		IsOpen:  current.IsOpen,
		Message: current.Message,
	}
	if input.IsOpen != nil {
		status.IsOpen = *input.IsOpen
	}
	if input.Message != nil {
		status.Message = *input.Message
	}

	if err := s.repo.Update(ctx, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store status")
	}
	return FromModel(status), nil
}
