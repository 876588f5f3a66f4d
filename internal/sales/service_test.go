package sales

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type stubSaleRepo struct {
	sales        []*models.Sale
	failCreates  int
	createdCalls int
}

func (r *stubSaleRepo) CreateWithTx(tx *gorm.DB, sale *models.Sale) error {
	r.createdCalls++
	if r.failCreates > 0 {
		r.failCreates--
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_sales_store_invoice"}
	}
	for _, existing := range r.sales {
		if existing.StoreID == sale.StoreID && existing.InvoiceNo == sale.InvoiceNo {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_sales_store_invoice"}
		}
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	r.sales = append(r.sales, sale)
	return nil
}

func (r *stubSaleRepo) LastInvoiceNoForPrefixWithTx(tx *gorm.DB, storeID uuid.UUID, dayPrefix string) (string, error) {
	last := ""
	for _, sale := range r.sales {
		if sale.StoreID != storeID {
			continue
		}
		if len(sale.InvoiceNo) < len(dayPrefix) || sale.InvoiceNo[:len(dayPrefix)] != dayPrefix {
			continue
		}
		if len(sale.InvoiceNo) > len(last) || (len(sale.InvoiceNo) == len(last) && sale.InvoiceNo > last) {
			last = sale.InvoiceNo
		}
	}
	return last, nil
}

func (r *stubSaleRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Sale, error) {
	for _, sale := range r.sales {
		if sale.ID == id && sale.StoreID == storeID {
			return sale, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) ListByStore(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) ([]models.Sale, error) {
	var out []models.Sale
	for _, sale := range r.sales {
		if sale.StoreID == storeID {
			out = append(out, *sale)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) SummaryByStore(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) (int64, decimal.Decimal, error) {
	var count int64
	revenue := decimal.Zero
	for _, sale := range r.sales {
		if sale.StoreID == storeID {
			count++
			revenue = revenue.Add(sale.TotalAmount)
		}
	}
	return count, revenue, nil
}

type stubItemTxRepo struct {
	items map[uuid.UUID]*models.Item
}

func newStubItemTxRepo(items ...*models.Item) *stubItemTxRepo {
	repo := &stubItemTxRepo{items: make(map[uuid.UUID]*models.Item)}
	for _, it := range items {
		repo.items[it.ID] = it
	}
	return repo
}

func (r *stubItemTxRepo) ListByIDsWithTx(tx *gorm.DB, storeID uuid.UUID, ids []uuid.UUID) ([]models.Item, error) {
	var out []models.Item
	for _, id := range ids {
		if it, ok := r.items[id]; ok && it.StoreID == storeID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *stubItemTxRepo) DecrementStockWithTx(tx *gorm.DB, storeID, id uuid.UUID, qty int) (int64, error) {
	it, ok := r.items[id]
	if !ok || it.StoreID != storeID {
		return 0, nil
	}
	it.Stock -= qty
	if it.Stock < 0 {
		it.Stock = 0
	}
	return 1, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "sales-test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubSaleRepo, items *stubItemTxRepo) *service {
	t.Helper()
	svc, err := NewService(repo, items, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func TestCreateSaleTotalsAndInvoiceSequence(t *testing.T) {
	storeID := uuid.New()
	burger := &models.Item{ID: uuid.New(), StoreID: storeID, Name: "Burger", Price: decimal.NewFromInt(100), Stock: 10}
	fries := &models.Item{ID: uuid.New(), StoreID: storeID, Name: "Fries", Price: decimal.NewFromInt(50), Stock: 10}
	repo := &stubSaleRepo{}
	svc := newTestService(t, repo, newStubItemTxRepo(burger, fries))
	day := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }

	first, err := svc.Create(context.Background(), storeID, CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: burger.ID, Qty: 2},
		{ItemID: fries.ID, Qty: 1},
	}})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !first.TotalAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total 250, got %s", first.TotalAmount)
	}
	if first.InvoiceNo != "INV-20250901-001" {
		t.Fatalf("expected first invoice INV-20250901-001, got %s", first.InvoiceNo)
	}
	if len(first.Items) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(first.Items))
	}
	if first.Items[0].Name != "Burger" || !first.Items[0].LineTotal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected first line snapshot: %+v", first.Items[0])
	}

	second, err := svc.Create(context.Background(), storeID, CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: fries.ID, Qty: 1},
	}})
	if err != nil {
		t.Fatalf("create second sale: %v", err)
	}
	if second.InvoiceNo != "INV-20250901-002" {
		t.Fatalf("expected second invoice INV-20250901-002, got %s", second.InvoiceNo)
	}
}

func TestCreateSaleDecrementsStockClamped(t *testing.T) {
	storeID := uuid.New()
	soup := &models.Item{ID: uuid.New(), StoreID: storeID, Name: "Soup", Price: decimal.NewFromInt(30), Stock: 1}
	items := newStubItemTxRepo(soup)
	svc := newTestService(t, &stubSaleRepo{}, items)

	_, err := svc.Create(context.Background(), storeID, CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: soup.ID, Qty: 5},
	}})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if soup.Stock != 0 {
		t.Fatalf("expected stock clamped to 0, got %d", soup.Stock)
	}
}

func TestCreateSaleRetriesOnInvoiceCollision(t *testing.T) {
	storeID := uuid.New()
	tea := &models.Item{ID: uuid.New(), StoreID: storeID, Name: "Tea", Price: decimal.NewFromInt(10), Stock: 10}
	repo := &stubSaleRepo{failCreates: 1}
	svc := newTestService(t, repo, newStubItemTxRepo(tea))

	dto, err := svc.Create(context.Background(), storeID, CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: tea.ID, Qty: 1},
	}})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if repo.createdCalls != 2 {
		t.Fatalf("expected 2 create attempts, got %d", repo.createdCalls)
	}
	if dto.InvoiceNo == "" {
		t.Fatal("expected an invoice number after retry")
	}
}

func TestCreateSaleGivesUpAfterRepeatedCollisions(t *testing.T) {
	storeID := uuid.New()
	tea := &models.Item{ID: uuid.New(), StoreID: storeID, Name: "Tea", Price: decimal.NewFromInt(10), Stock: 10}
	repo := &stubSaleRepo{failCreates: invoiceRetries}
	svc := newTestService(t, repo, newStubItemTxRepo(tea))

	_, err := svc.Create(context.Background(), storeID, CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: tea.ID, Qty: 1},
	}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict after exhausted retries, got %v", err)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	svc := newTestService(t, &stubSaleRepo{}, newStubItemTxRepo())

	cases := []struct {
		name  string
		input CreateSaleInput
	}{
		{"empty lines", CreateSaleInput{}},
		{"zero qty", CreateSaleInput{Lines: []SaleLineInput{{ItemID: uuid.New(), Qty: 0}}}},
		{"nil item", CreateSaleInput{Lines: []SaleLineInput{{Qty: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	dupID := uuid.New()
	_, err := svc.Create(context.Background(), uuid.New(), CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: dupID, Qty: 1},
		{ItemID: dupID, Qty: 2},
	}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for duplicate lines, got %v", err)
	}
}

func TestCreateSaleUnknownItem(t *testing.T) {
	svc := newTestService(t, &stubSaleRepo{}, newStubItemTxRepo())

	_, err := svc.Create(context.Background(), uuid.New(), CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: uuid.New(), Qty: 1},
	}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSalesAggregates(t *testing.T) {
	storeID := uuid.New()
	repo := &stubSaleRepo{sales: []*models.Sale{
		{ID: uuid.New(), StoreID: storeID, InvoiceNo: "INV-20250901-001", TotalAmount: decimal.NewFromInt(250)},
		{ID: uuid.New(), StoreID: storeID, InvoiceNo: "INV-20250901-002", TotalAmount: decimal.NewFromInt(50)},
		{ID: uuid.New(), StoreID: uuid.New(), InvoiceNo: "INV-20250901-001", TotalAmount: decimal.NewFromInt(999)},
	}}
	svc := newTestService(t, repo, newStubItemTxRepo())

	page, err := svc.List(context.Background(), storeID, ListSalesInput{})
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 sales, got %d", page.TotalCount)
	}
	if !page.TotalRevenue.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected revenue 300, got %s", page.TotalRevenue)
	}
}

func TestListSalesRejectsInvertedRange(t *testing.T) {
	svc := newTestService(t, &stubSaleRepo{}, newStubItemTxRepo())
	from := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)

	_, err := svc.List(context.Background(), uuid.New(), ListSalesInput{From: &from, To: &to})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSaleSequencePastThreeDigits(t *testing.T) {
	storeID := uuid.New()
	coffee := &models.Item{ID: uuid.New(), StoreID: storeID, Name: "Coffee", Price: decimal.NewFromInt(4), Stock: 10}
	repo := &stubSaleRepo{sales: []*models.Sale{
		{ID: uuid.New(), StoreID: storeID, InvoiceNo: "INV-20250901-999"},
		{ID: uuid.New(), StoreID: storeID, InvoiceNo: "INV-20250901-1000"},
	}}
	svc := newTestService(t, repo, newStubItemTxRepo(coffee))
	day := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }

	sale, err := svc.Create(context.Background(), storeID, CreateSaleInput{Lines: []SaleLineInput{
		{ItemID: coffee.ID, Qty: 1},
	}})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.InvoiceNo != "INV-20250901-1001" {
		t.Fatalf("expected INV-20250901-1001 after the four-digit rollover, got %s", sale.InvoiceNo)
	}
}

func TestNextInvoiceSeq(t *testing.T) {
	cases := []struct {
		last string
		want int
	}{
		{"", 1},
		{"INV-20250901-001", 2},
		{"INV-20250901-099", 100},
		{"INV-20250901-999", 1000},
		{"garbage", 1},
	}
	for _, tc := range cases {
		if got := nextInvoiceSeq(tc.last); got != tc.want {
			t.Errorf("nextInvoiceSeq(%q) = %d, want %d", tc.last, got, tc.want)
		}
	}
	if got := formatInvoiceNo("INV-20250901", 7); got != "INV-20250901-007" {
		t.Errorf("formatInvoiceNo = %s", got)
	}
}
