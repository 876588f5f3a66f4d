package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/identity"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type identityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

type userReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type grantsReader interface {
	ListStoreIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Service authenticates against the external identity provider and resolves
// provider identities to local actors.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*identity.Session, *access.Actor, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
	Logout(ctx context.Context, accessToken string)
	ResolveActor(ctx context.Context, accessToken string) (*access.Actor, error)
}

type service struct {
	provider identityProvider
	users    userReader
	grants   grantsReader
	logg     *logger.Logger
}

// NewService builds an auth service.
func NewService(provider identityProvider, users userReader, grants grantsReader, logg *logger.Logger) (Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if grants == nil {
		return nil, fmt.Errorf("store access repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{provider: provider, users: users, grants: grants, logg: logg}, nil
}

// Login signs in with the provider and resolves the local actor. A provider
// identity without a local row is rejected; rows are created only through
// explicit user provisioning.
func (s *service) Login(ctx context.Context, input LoginInput) (*identity.Session, *access.Actor, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	session, err := s.provider.SignInWithPassword(ctx, email, input.Password)
	if err != nil {
		return nil, nil, err
	}

	actor, err := s.actorForEmail(ctx, session.User.Email)
	if err != nil {
		return nil, nil, err
	}
	return session, actor, nil
}

// Refresh exchanges the refresh token for a fresh session.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	if refreshToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	return s.provider.RefreshSession(ctx, refreshToken)
}

// Logout revokes the provider session. Best-effort; the cookies are cleared
// by the caller regardless.
func (s *service) Logout(ctx context.Context, accessToken string) {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		s.logg.Warn(ctx, "provider sign-out failed")
	}
}

// ResolveActor maps a verified access token to the local actor with its
// access grants. Unknown provider identities resolve to unauthenticated.
func (s *service) ResolveActor(ctx context.Context, accessToken string) (*access.Actor, error) {
	providerUser, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return s.actorForEmail(ctx, providerUser.Email)
}

func (s *service) actorForEmail(ctx context.Context, email string) (*access.Actor, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is not provisioned")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	storeIDs, err := s.grants.ListStoreIDsForUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load access grants")
	}

	return &access.Actor{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		StoreIDs:    storeIDs,
	}, nil
}
