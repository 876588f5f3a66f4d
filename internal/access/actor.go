package access

import (
	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/enums"
)

// Actor is the resolved identity for one request, built once at the
// middleware boundary and threaded explicitly through services.
type Actor struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Role        enums.UserRole
	StoreIDs    []uuid.UUID
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == enums.UserRoleAdmin
}
