package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	"github.com/tablemesa/resto-backend/pkg/enums"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/identity"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/security"
)

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	CreateWithTx(tx *gorm.DB, user *models.User) error
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.User, error)
	UpdateWithTx(tx *gorm.DB, user *models.User) error
	DeleteWithTx(tx *gorm.DB, id uuid.UUID) error
}

type grantsRepository interface {
	ReplaceForUserWithTx(tx *gorm.DB, userID uuid.UUID, storeIDs []uuid.UUID) error
}

type identityAdmin interface {
	AdminCreateUser(ctx context.Context, email, password string) (*identity.User, error)
	AdminUpdateUserPassword(ctx context.Context, externalID, password string) error
	AdminDeleteUser(ctx context.Context, externalID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes user management operations. All are admin-only except Me.
type Service interface {
	List(ctx context.Context, actor *access.Actor) ([]UserDTO, error)
	GetByID(ctx context.Context, actor *access.Actor, id uuid.UUID) (*UserDTO, error)
	Me(ctx context.Context, actor *access.Actor) (*UserDTO, error)
	Create(ctx context.Context, actor *access.Actor, input CreateUserInput) (*UserDTO, error)
	Update(ctx context.Context, actor *access.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, actor *access.Actor, id uuid.UUID) error
}

type service struct {
	repo        userRepository
	grants      grantsRepository
	provider    identityAdmin
	tx          txRunner
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
}

// NewService builds a user service with the provided dependencies.
func NewService(repo userRepository, grants grantsRepository, provider identityAdmin, tx txRunner, logg *logger.Logger, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if grants == nil {
		return nil, fmt.Errorf("grants repository required")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity client required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		grants:      grants,
		provider:    provider,
		tx:          tx,
		logg:        logg,
		passwordCfg: passwordCfg,
	}, nil
}

func (s *service) List(ctx context.Context, actor *access.Actor) ([]UserDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, actor *access.Actor, id uuid.UUID) (*UserDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) Me(ctx context.Context, actor *access.Actor) (*UserDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

// Create registers the user with the identity provider first, then mirrors a
// local row with an argon2id fallback hash and the initial grant set.
func (s *service) Create(ctx context.Context, actor *access.Actor, input CreateUserInput) (*UserDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	password := input.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(16)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	external, err := s.provider.AdminCreateUser(ctx, email, password)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register identity")
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = email
	}

	externalID := external.ID
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         role,
		ExternalID:   &externalID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateWithTx(tx, user); err != nil {
			return err
		}
		return s.grants.ReplaceForUserWithTx(tx, user.ID, input.StoreIDs)
	})
	if err != nil {
		// identity row exists but the mirror failed; roll the provider back
		if delErr := s.provider.AdminDeleteUser(ctx, external.ID); delErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "external_id", external.ID), "orphaned identity after failed user create")
		}
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.GetByID(ctx, actor, user.ID)
}

func (s *service) Update(ctx context.Context, actor *access.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	var externalID string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}
		if user.ExternalID != nil {
			externalID = *user.ExternalID
		}

		if input.DisplayName != nil {
			name := strings.TrimSpace(*input.DisplayName)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
			}
			user.DisplayName = name
		}
		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.Password != nil && *input.Password != "" {
			hash, err := security.HashPassword(*input.Password, s.passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			user.PasswordHash = hash
		}

		if err := s.repo.UpdateWithTx(tx, user); err != nil {
			return err
		}

		if input.StoreIDs != nil {
			if err := s.grants.ReplaceForUserWithTx(tx, user.ID, *input.StoreIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	if input.Password != nil && *input.Password != "" && externalID != "" {
		if err := s.provider.AdminUpdateUserPassword(ctx, externalID, *input.Password); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "external_id", externalID), "provider password rotation failed")
		}
	}

	return s.GetByID(ctx, actor, id)
}

// Delete removes the local row (grants cascade) and then removes the provider
// identity best-effort; a provider failure never fails the delete.
func (s *service) Delete(ctx context.Context, actor *access.Actor, id uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}

	var externalID string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.repo.FindByIDWithTx(tx, id)
		if err != nil {
			return err
		}
		if user.ExternalID != nil {
			externalID = *user.ExternalID
		}
		return s.repo.DeleteWithTx(tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}

	if externalID != "" {
		if err := s.provider.AdminDeleteUser(ctx, externalID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "external_id", externalID), "provider identity cleanup failed")
		}
	}
	return nil
}
