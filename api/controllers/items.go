package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/items"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type createItemRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=120"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"omitempty,min=0"`
	ProductID   *uuid.UUID      `json:"product_id"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	IsAvailable *bool           `json:"is_available"`
}

type updateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	IsAvailable *bool            `json:"is_available"`
}

type decrementItemRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetByID(r.Context(), middleware.StoreIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), middleware.StoreIDFromContext(r.Context()), items.CreateItemInput{
			Name:        req.Name,
			Price:       req.Price,
			Stock:       req.Stock,
			ProductID:   req.ProductID,
			CategoryID:  req.CategoryID,
			IsAvailable: req.IsAvailable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), id, items.UpdateItemInput{
			Name:        req.Name,
			Price:       req.Price,
			Stock:       req.Stock,
			CategoryID:  req.CategoryID,
			IsAvailable: req.IsAvailable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.StoreIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "item deleted"})
	}
}

// ItemDecrement applies a clamped stock decrement and returns the fresh row.
func ItemDecrement(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req decrementItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Decrement(r.Context(), middleware.StoreIDFromContext(r.Context()), id, req.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
