package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablemesa/resto-backend/pkg/db"
	"github.com/tablemesa/resto-backend/pkg/db/models"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/pagination"
)

// invoiceRetries bounds the reattempts when two sales race for the same
// invoice number. Each retry rescans the day's max inside a fresh transaction.
const invoiceRetries = 3

type saleRepository interface {
	CreateWithTx(tx *gorm.DB, sale *models.Sale) error
	LastInvoiceNoForPrefixWithTx(tx *gorm.DB, storeID uuid.UUID, dayPrefix string) (string, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Sale, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) ([]models.Sale, error)
	SummaryByStore(ctx context.Context, storeID uuid.UUID, filter ListSalesInput) (int64, decimal.Decimal, error)
}

type itemTxRepository interface {
	ListByIDsWithTx(tx *gorm.DB, storeID uuid.UUID, ids []uuid.UUID) ([]models.Item, error)
	DecrementStockWithTx(tx *gorm.DB, storeID, id uuid.UUID, qty int) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records and lists sales for one resolved store.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateSaleInput) (*SaleDTO, error)
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*SaleDTO, error)
	List(ctx context.Context, storeID uuid.UUID, input ListSalesInput) (*SalesPageDTO, error)
}

type service struct {
	repo  saleRepository
	items itemTxRepository
	tx    txRunner
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds a sales service.
func NewService(repo saleRepository, items itemTxRepository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sale repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, items: items, tx: tx, logg: logg, now: time.Now}, nil
}

// Create records a sale in one transaction: lines snapshot the item name and
// price, the total is the sum of line totals, the invoice number continues the
// day's sequence, and each line's stock is decremented with a clamped UPDATE.
// A collision on the invoice number rolls back and retries with a rescan.
func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateSaleInput) (*SaleDTO, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	seen := make(map[uuid.UUID]int, len(input.Lines))
	ids := make([]uuid.UUID, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_id is required on every line")
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive on every line")
		}
		if _, dup := seen[line.ItemID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate item on sale; merge quantities into one line")
		}
		seen[line.ItemID] = line.Qty
		ids = append(ids, line.ItemID)
	}

	dayPrefix := invoiceDayPrefix(s.now().UTC())

	var sale *models.Sale
	var lastErr error
	for attempt := 0; attempt < invoiceRetries; attempt++ {
		sale = nil
		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			rows, err := s.items.ListByIDsWithTx(tx, storeID, ids)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
			}
			if len(rows) != len(ids) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "one or more items not found")
			}
			byID := make(map[uuid.UUID]models.Item, len(rows))
			for _, row := range rows {
				byID[row.ID] = row
			}

			total := decimal.Zero
			lines := make([]models.SaleItem, 0, len(input.Lines))
			for _, line := range input.Lines {
				item := byID[line.ItemID]
				lineTotal := item.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
				total = total.Add(lineTotal)
				itemID := item.ID
				lines = append(lines, models.SaleItem{
					ItemID:    &itemID,
					Name:      item.Name,
					Qty:       line.Qty,
					UnitPrice: item.Price,
					LineTotal: lineTotal,
				})
			}

			last, err := s.repo.LastInvoiceNoForPrefixWithTx(tx, storeID, dayPrefix)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan invoice sequence")
			}

			candidate := &models.Sale{
				StoreID:     storeID,
				InvoiceNo:   formatInvoiceNo(dayPrefix, nextInvoiceSeq(last)),
				TotalAmount: total,
				Items:       lines,
			}
			if err := s.repo.CreateWithTx(tx, candidate); err != nil {
				return err
			}

			for _, line := range input.Lines {
				affected, err := s.items.DecrementStockWithTx(tx, storeID, line.ItemID, line.Qty)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if affected == 0 {
					return pkgerrors.New(pkgerrors.CodeNotFound, "one or more items not found")
				}
			}

			sale = candidate
			return nil
		})
		if lastErr == nil {
			return FromModel(sale), nil
		}
		if !db.IsUniqueViolation(lastErr) {
			break
		}
		s.logg.Warn(s.logg.WithStoreID(ctx, storeID.String()), "invoice number collision, retrying")
	}

	if typed := pkgerrors.As(lastErr); typed != nil {
		return nil, lastErr
	}
	if db.IsUniqueViolation(lastErr) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "could not allocate invoice number")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create sale")
}

func (s *service) GetByID(ctx context.Context, storeID, id uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return FromModel(sale), nil
}

// List returns a page of sales plus count and revenue over the whole range.
func (s *service) List(ctx context.Context, storeID uuid.UUID, input ListSalesInput) (*SalesPageDTO, error) {
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	input.Limit = pagination.NormalizeLimit(input.Limit)
	input.Offset = pagination.NormalizeOffset(input.Offset)

	rows, err := s.repo.ListByStore(ctx, storeID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	count, revenue, err := s.repo.SummaryByStore(ctx, storeID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize sales")
	}

	return &SalesPageDTO{
		Sales:        FromModels(rows),
		TotalCount:   count,
		TotalRevenue: revenue,
	}, nil
}
