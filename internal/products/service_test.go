package products

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	"github.com/tablemesa/resto-backend/pkg/enums"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type stubProductRepo struct {
	rows map[uuid.UUID]*models.Product
}

func newStubProductRepo(rows ...*models.Product) *stubProductRepo {
	repo := &stubProductRepo{rows: make(map[uuid.UUID]*models.Product)}
	for _, row := range rows {
		repo.rows[row.ID] = row
	}
	return repo
}

func (r *stubProductRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, row := range r.rows {
		if row.StoreID == storeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	row, ok := r.rows[id]
	if !ok || row.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *stubProductRepo) ListByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if row, ok := r.rows[id]; ok && row.StoreID == storeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Create(ctx context.Context, product *models.Product) error {
	for _, row := range r.rows {
		if row.StoreID == product.StoreID && row.Name == product.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_products_store_name"}
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.rows[product.ID] = product
	return nil
}

func (r *stubProductRepo) CreateBatchWithTx(tx *gorm.DB, products []models.Product) error {
	for i := range products {
		if err := r.Create(context.Background(), &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubProductRepo) Update(ctx context.Context, product *models.Product) error {
	r.rows[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

type stubGuard struct {
	allowed map[uuid.UUID]bool
}

func (g stubGuard) HasAccess(ctx context.Context, actor *access.Actor, storeID uuid.UUID) (bool, error) {
	if actor != nil && actor.IsAdmin() {
		return true, nil
	}
	return g.allowed[storeID], nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubObjectStore struct {
	deleted []string
	err     error
}

func (s *stubObjectStore) Delete(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "products-test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubProductRepo, guard stubGuard, images objectStore) Service {
	t.Helper()
	svc, err := NewService(repo, guard, stubTxRunner{}, images, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func adminActor() *access.Actor {
	return &access.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestCreateProductDuplicateName(t *testing.T) {
	storeID := uuid.New()
	repo := newStubProductRepo(&models.Product{ID: uuid.New(), StoreID: storeID, Name: "Burger"})
	svc := newTestService(t, repo, stubGuard{}, nil)

	_, err := svc.Create(context.Background(), storeID, CreateProductInput{Name: "Burger"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteProductCleansUpImage(t *testing.T) {
	storeID := uuid.New()
	key := "products/burger.png"
	repo := newStubProductRepo(&models.Product{ID: uuid.New(), StoreID: storeID, Name: "Burger", ImageObjectKey: &key})
	images := &stubObjectStore{}
	svc := newTestService(t, repo, stubGuard{}, images)

	var productID uuid.UUID
	for id := range repo.rows {
		productID = id
	}
	if err := svc.Delete(context.Background(), storeID, productID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if len(images.deleted) != 1 || images.deleted[0] != key {
		t.Fatalf("expected image cleanup for %s, got %v", key, images.deleted)
	}
}

func TestDeleteProductSurvivesImageCleanupFailure(t *testing.T) {
	storeID := uuid.New()
	key := "products/fries.png"
	product := &models.Product{ID: uuid.New(), StoreID: storeID, Name: "Fries", ImageObjectKey: &key}
	repo := newStubProductRepo(product)
	images := &stubObjectStore{err: pkgerrors.New(pkgerrors.CodeDependency, "bucket unavailable")}
	svc := newTestService(t, repo, stubGuard{}, images)

	if err := svc.Delete(context.Background(), storeID, product.ID); err != nil {
		t.Fatalf("expected delete to succeed despite cleanup failure: %v", err)
	}
	if _, ok := repo.rows[product.ID]; ok {
		t.Fatal("expected row to be removed")
	}
}

func TestCopyProductsIntoAccessibleStore(t *testing.T) {
	sourceID := uuid.New()
	targetID := uuid.New()
	src := &models.Product{ID: uuid.New(), StoreID: sourceID, Name: "Combo"}
	repo := newStubProductRepo(src)
	svc := newTestService(t, repo, stubGuard{allowed: map[uuid.UUID]bool{targetID: true}}, nil)
	actor := &access.Actor{UserID: uuid.New(), Role: enums.UserRoleUser, StoreIDs: []uuid.UUID{sourceID, targetID}}

	copies, err := svc.Copy(context.Background(), actor, sourceID, CopyProductsInput{
		ProductIDs:    []uuid.UUID{src.ID},
		TargetStoreID: targetID,
	})
	if err != nil {
		t.Fatalf("copy products: %v", err)
	}
	if len(copies) != 1 {
		t.Fatalf("expected 1 copy, got %d", len(copies))
	}
	if copies[0].StoreID != targetID {
		t.Fatalf("expected copy in target store, got %s", copies[0].StoreID)
	}
	if copies[0].ID == src.ID {
		t.Fatal("expected a fresh id for the copy")
	}
}

func TestCopyProductsDeniedTargetReadsAsNotFound(t *testing.T) {
	sourceID := uuid.New()
	src := &models.Product{ID: uuid.New(), StoreID: sourceID, Name: "Combo"}
	svc := newTestService(t, newStubProductRepo(src), stubGuard{}, nil)
	actor := &access.Actor{UserID: uuid.New(), Role: enums.UserRoleUser}

	_, err := svc.Copy(context.Background(), actor, sourceID, CopyProductsInput{
		ProductIDs:    []uuid.UUID{src.ID},
		TargetStoreID: uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for denied target, got %v", err)
	}
}

func TestCopyProductsMissingSource(t *testing.T) {
	targetID := uuid.New()
	svc := newTestService(t, newStubProductRepo(), stubGuard{allowed: map[uuid.UUID]bool{targetID: true}}, nil)

	_, err := svc.Copy(context.Background(), adminActor(), uuid.New(), CopyProductsInput{
		ProductIDs:    []uuid.UUID{uuid.New()},
		TargetStoreID: targetID,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing source, got %v", err)
	}
}
