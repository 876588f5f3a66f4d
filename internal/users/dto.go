package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/db/models"
	"github.com/tablemesa/resto-backend/pkg/enums"
)

// UserDTO exposes safe user data in API responses.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	Role        enums.UserRole `json:"role"`
	StoreIDs    []uuid.UUID    `json:"store_ids"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserInput holds creation-time data for a new user.
type CreateUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        enums.UserRole
	StoreIDs    []uuid.UUID
}

// UpdateUserInput captures the allowed user fields for mutation. A non-nil
// StoreIDs replaces the grant set wholesale.
type UpdateUserInput struct {
	DisplayName *string
	Role        *enums.UserRole
	Password    *string
	StoreIDs    *[]uuid.UUID
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	storeIDs := make([]uuid.UUID, 0, len(m.StoreAccess))
	for _, grant := range m.StoreAccess {
		storeIDs = append(storeIDs, grant.StoreID)
	}
	return &UserDTO{
		ID:          m.ID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		StoreIDs:    storeIDs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
