package users

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	"github.com/tablemesa/resto-backend/pkg/enums"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/identity"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type stubUserRepo struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User

	deleted []uuid.UUID
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]*models.User),
	}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) CreateWithTx(tx *gorm.DB, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *stubUserRepo) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubUserRepo) UpdateWithTx(tx *gorm.DB, user *models.User) error {
	r.byID[user.ID] = user
	return nil
}

func (r *stubUserRepo) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	u, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubGrantsRepo struct {
	replaced map[uuid.UUID][]uuid.UUID
	err      error
}

func newStubGrantsRepo() *stubGrantsRepo {
	return &stubGrantsRepo{replaced: make(map[uuid.UUID][]uuid.UUID)}
}

func (g *stubGrantsRepo) ReplaceForUserWithTx(tx *gorm.DB, userID uuid.UUID, storeIDs []uuid.UUID) error {
	if g.err != nil {
		return g.err
	}
	g.replaced[userID] = storeIDs
	return nil
}

type stubProvider struct {
	created         []string
	deleted         []string
	passwordUpdates []string
	createErr       error
}

func (p *stubProvider) AdminCreateUser(ctx context.Context, email, password string) (*identity.User, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, email)
	return &identity.User{ID: "ext-" + email, Email: email}, nil
}

func (p *stubProvider) AdminUpdateUserPassword(ctx context.Context, externalID, password string) error {
	p.passwordUpdates = append(p.passwordUpdates, externalID)
	return nil
}

func (p *stubProvider) AdminDeleteUser(ctx context.Context, externalID string) error {
	p.deleted = append(p.deleted, externalID)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    64,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func adminActor() *access.Actor {
	return &access.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func newTestService(t *testing.T, repo *stubUserRepo, grants *stubGrantsRepo, provider *stubProvider) Service {
	t.Helper()
	svc, err := NewService(repo, grants, provider, stubTxRunner{}, testLogger(), testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateUserProviderFirst(t *testing.T) {
	repo := newStubUserRepo()
	grants := newStubGrantsRepo()
	provider := &stubProvider{}
	svc := newTestService(t, repo, grants, provider)

	storeID := uuid.New()
	dto, err := svc.Create(context.Background(), adminActor(), CreateUserInput{
		Email:       "Waiter@Example.com",
		Password:    "initial-pass",
		DisplayName: "Waiter One",
		StoreIDs:    []uuid.UUID{storeID},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if len(provider.created) != 1 || provider.created[0] != "waiter@example.com" {
		t.Fatalf("expected provider registration first, got %v", provider.created)
	}
	if dto.Email != "waiter@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.Role != enums.UserRoleUser {
		t.Fatalf("expected default USER role, got %s", dto.Role)
	}

	stored := repo.byEmail["waiter@example.com"]
	if stored == nil {
		t.Fatal("expected local mirror row")
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "initial-pass" {
		t.Fatal("expected hashed fallback password")
	}
	if got := grants.replaced[stored.ID]; len(got) != 1 || got[0] != storeID {
		t.Fatalf("expected initial grant set, got %v", got)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "taken@example.com"}
	svc := newTestService(t, newStubUserRepo(existing), newStubGrantsRepo(), &stubProvider{})

	_, err := svc.Create(context.Background(), adminActor(), CreateUserInput{Email: "taken@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateUserProviderFailure(t *testing.T) {
	provider := &stubProvider{createErr: errors.New("provider down")}
	repo := newStubUserRepo()
	svc := newTestService(t, repo, newStubGrantsRepo(), provider)

	_, err := svc.Create(context.Background(), adminActor(), CreateUserInput{Email: "x@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatal("no local row should exist after provider failure")
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), newStubGrantsRepo(), &stubProvider{})

	actor := &access.Actor{UserID: uuid.New(), Role: enums.UserRoleUser}
	_, err := svc.Create(context.Background(), actor, CreateUserInput{Email: "x@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateReplacesGrantsWholesale(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "u@example.com", DisplayName: "U", Role: enums.UserRoleUser}
	repo := newStubUserRepo(user)
	grants := newStubGrantsRepo()
	svc := newTestService(t, repo, grants, &stubProvider{})

	newSet := []uuid.UUID{uuid.New(), uuid.New()}
	if _, err := svc.Update(context.Background(), adminActor(), user.ID, UpdateUserInput{StoreIDs: &newSet}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	got := grants.replaced[user.ID]
	if len(got) != 2 || got[0] != newSet[0] || got[1] != newSet[1] {
		t.Fatalf("expected wholesale replacement with new set, got %v", got)
	}
}

func TestDeleteUserCleansUpProvider(t *testing.T) {
	externalID := "ext-123"
	user := &models.User{ID: uuid.New(), Email: "gone@example.com", ExternalID: &externalID}
	repo := newStubUserRepo(user)
	provider := &stubProvider{}
	svc := newTestService(t, repo, newStubGrantsRepo(), provider)

	if err := svc.Delete(context.Background(), adminActor(), user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected local row removed")
	}
	if len(provider.deleted) != 1 || provider.deleted[0] != externalID {
		t.Fatalf("expected provider identity removed, got %v", provider.deleted)
	}
}

func TestDeleteSelfRejected(t *testing.T) {
	actor := adminActor()
	user := &models.User{ID: actor.UserID, Email: "self@example.com"}
	svc := newTestService(t, newStubUserRepo(user), newStubGrantsRepo(), &stubProvider{})

	err := svc.Delete(context.Background(), actor, actor.UserID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMeReturnsOwnRecord(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "me@example.com", Role: enums.UserRoleUser}
	svc := newTestService(t, newStubUserRepo(user), newStubGrantsRepo(), &stubProvider{})

	dto, err := svc.Me(context.Background(), &access.Actor{UserID: user.ID, Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if dto.Email != "me@example.com" {
		t.Fatalf("unexpected email %q", dto.Email)
	}
}
