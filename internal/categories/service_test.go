package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
)

type stubCategoryRepo struct {
	rows map[uuid.UUID]*models.Category
}

func newStubCategoryRepo(rows ...*models.Category) *stubCategoryRepo {
	repo := &stubCategoryRepo{rows: make(map[uuid.UUID]*models.Category)}
	for _, row := range rows {
		repo.rows[row.ID] = row
	}
	return repo
}

func (r *stubCategoryRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, row := range r.rows {
		if row.StoreID == storeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Category, error) {
	row, ok := r.rows[id]
	if !ok || row.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *stubCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	for _, row := range r.rows {
		if row.StoreID == category.StoreID && row.Name == category.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_categories_store_name"}
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.rows[category.ID] = category
	return nil
}

func (r *stubCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	for _, row := range r.rows {
		if row.ID != category.ID && row.StoreID == category.StoreID && row.Name == category.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_categories_store_name"}
		}
	}
	r.rows[category.ID] = category
	return nil
}

func (r *stubCategoryRepo) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func newTestService(t *testing.T, repo *stubCategoryRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateCategoryStampsStore(t *testing.T) {
	storeID := uuid.New()
	svc := newTestService(t, newStubCategoryRepo())

	dto, err := svc.Create(context.Background(), storeID, CreateCategoryInput{Name: " Mains ", SortOrder: 2})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if dto.StoreID != storeID {
		t.Fatalf("expected store %s, got %s", storeID, dto.StoreID)
	}
	if dto.Name != "Mains" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	storeID := uuid.New()
	repo := newStubCategoryRepo(&models.Category{ID: uuid.New(), StoreID: storeID, Name: "Drinks"})
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), storeID, CreateCategoryInput{Name: "Drinks"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Same name in another store is fine.
	if _, err := svc.Create(context.Background(), uuid.New(), CreateCategoryInput{Name: "Drinks"}); err != nil {
		t.Fatalf("expected cross-store duplicate to succeed: %v", err)
	}
}

func TestUpdateCategoryScopedToStore(t *testing.T) {
	storeID := uuid.New()
	row := &models.Category{ID: uuid.New(), StoreID: storeID, Name: "Sides"}
	svc := newTestService(t, newStubCategoryRepo(row))

	name := "Starters"
	_, err := svc.Update(context.Background(), uuid.New(), row.ID, UpdateCategoryInput{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for other store, got %v", err)
	}

	dto, err := svc.Update(context.Background(), storeID, row.ID, UpdateCategoryInput{Name: &name})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if dto.Name != "Starters" {
		t.Fatalf("expected renamed category, got %q", dto.Name)
	}
}

func TestDeleteCategoryUnknown(t *testing.T) {
	svc := newTestService(t, newStubCategoryRepo())

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCategoriesFiltersByStore(t *testing.T) {
	storeID := uuid.New()
	repo := newStubCategoryRepo(
		&models.Category{ID: uuid.New(), StoreID: storeID, Name: "Mains"},
		&models.Category{ID: uuid.New(), StoreID: uuid.New(), Name: "Other"},
	)
	svc := newTestService(t, repo)

	rows, err := svc.List(context.Background(), storeID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Mains" {
		t.Fatalf("expected only the store's categories, got %+v", rows)
	}
}
