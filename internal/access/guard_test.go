package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/pkg/enums"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type stubGrantsRepo struct {
	granted map[uuid.UUID]bool
	err     error
}

func (s stubGrantsRepo) Exists(ctx context.Context, userID, storeID uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.granted[storeID], nil
}

func TestNewGuardRequiresRepo(t *testing.T) {
	if _, err := NewGuard(nil); err == nil {
		t.Fatal("expected error creating guard without repo")
	}
}

func TestHasAccessMatrix(t *testing.T) {
	grantedStore := uuid.New()
	otherStore := uuid.New()
	guard, err := NewGuard(stubGrantsRepo{granted: map[uuid.UUID]bool{grantedStore: true}})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	admin := &Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	user := &Actor{UserID: uuid.New(), Role: enums.UserRoleUser}

	cases := []struct {
		name    string
		actor   *Actor
		storeID uuid.UUID
		want    bool
	}{
		{name: "nil actor denied", actor: nil, storeID: grantedStore, want: false},
		{name: "admin allowed anywhere", actor: admin, storeID: otherStore, want: true},
		{name: "user allowed with grant", actor: user, storeID: grantedStore, want: true},
		{name: "user denied without grant", actor: user, storeID: otherStore, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := guard.HasAccess(context.Background(), tc.actor, tc.storeID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("HasAccess = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasAccessRepositoryError(t *testing.T) {
	guard, err := NewGuard(stubGrantsRepo{err: errors.New("boom")})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	user := &Actor{UserID: uuid.New(), Role: enums.UserRoleUser}
	_, gotErr := guard.HasAccess(context.Background(), user, uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestRequireAccessForbidden(t *testing.T) {
	guard, err := NewGuard(stubGrantsRepo{})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	user := &Actor{UserID: uuid.New(), Role: enums.UserRoleUser}
	gotErr := guard.RequireAccess(context.Background(), user, uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", gotErr)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(&Actor{Role: enums.UserRoleAdmin}); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}

	gotErr := RequireAdmin(&Actor{Role: enums.UserRoleUser})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for plain user, got %v", gotErr)
	}

	gotErr = RequireAdmin(nil)
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for nil actor, got %v", gotErr)
	}
}
