package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/sales"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/pagination"
)

type saleLineRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Qty    int       `json:"qty" validate:"required,min=1"`
}

type createSaleRequest struct {
	Lines []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func SaleList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// to is inclusive; the repository filter uses an exclusive upper
		// bound, so push it to the next midnight.
		if to != nil {
			end := to.AddDate(0, 0, 1)
			to = &end
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), middleware.StoreIDFromContext(r.Context()), sales.ListSalesInput{
			From:   from,
			To:     to,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func SaleGet(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.GetByID(r.Context(), middleware.StoreIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleCreate records a sale: snapshot lines, invoice number, stock decrement,
// all in one transaction.
func SaleCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]sales.SaleLineInput, 0, len(req.Lines))
		for _, line := range req.Lines {
			lines = append(lines, sales.SaleLineInput{ItemID: line.ItemID, Qty: line.Qty})
		}

		sale, err := svc.Create(r.Context(), middleware.StoreIDFromContext(r.Context()), sales.CreateSaleInput{Lines: lines})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}
