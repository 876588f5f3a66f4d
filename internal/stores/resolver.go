package stores

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

type resolverRepository interface {
	FindActiveDefault(ctx context.Context) (*models.Store, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Store, error)
}

// Resolver determines which store a request operates against.
type Resolver struct {
	repo         resolverRepository
	fallbackSlug string
}

// NewResolver builds a resolver with the configured public fallback slug.
func NewResolver(repo resolverRepository, fallbackSlug string) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &Resolver{repo: repo, fallbackSlug: strings.TrimSpace(fallbackSlug)}, nil
}

// ResolvePublic picks the storefront tenant: the active default store wins,
// then an active store matching the configured fallback slug. Neither
// resolving is a deployment configuration failure, not a caller error.
func (r *Resolver) ResolvePublic(ctx context.Context) (*StoreDTO, error) {
	store, err := r.repo.FindActiveDefault(ctx)
	if err == nil {
		return FromModel(store), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve default store")
	}

	if r.fallbackSlug != "" {
		store, err = r.repo.FindActiveBySlug(ctx, r.fallbackSlug)
		if err == nil {
			return FromModel(store), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve fallback store")
		}
	}

	return nil, pkgerrors.New(pkgerrors.CodeInternal, "no public store configured")
}

// ResolveAdmin parses the store-selection cookie value. An absent selection
// is a forbidden-class condition; admin endpoints require a selected store.
func (r *Resolver) ResolveAdmin(cookieValue string) (uuid.UUID, error) {
	value := strings.TrimSpace(cookieValue)
	if value == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no store selected")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "invalid store selection")
	}
	return id, nil
}
