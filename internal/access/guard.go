package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type grantsRepository interface {
	Exists(ctx context.Context, userID, storeID uuid.UUID) (bool, error)
}

// Guard answers store-level permission questions. Grants are checked against
// the database on every call, never cached across requests.
type Guard struct {
	grants grantsRepository
}

// NewGuard binds the guard to a store-access repository.
func NewGuard(grants grantsRepository) (*Guard, error) {
	if grants == nil {
		return nil, fmt.Errorf("grants repository required")
	}
	return &Guard{grants: grants}, nil
}

// HasAccess reports whether the actor may operate within the store.
// Admins pass unconditionally; users need an explicit grant.
func (g *Guard) HasAccess(ctx context.Context, actor *Actor, storeID uuid.UUID) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.IsAdmin() {
		return true, nil
	}
	ok, err := g.grants.Exists(ctx, actor.UserID, storeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store access")
	}
	return ok, nil
}

// RequireAccess converts a denied check into a forbidden error.
func (g *Guard) RequireAccess(ctx context.Context, actor *Actor, storeID uuid.UUID) error {
	ok, err := g.HasAccess(ctx, actor, storeID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "no access to this store")
	}
	return nil
}

// RequireAdmin rejects non-admin actors. Store governance (name, slug,
// default flag, user management) needs this even with a store grant.
func RequireAdmin(actor *Actor) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}
