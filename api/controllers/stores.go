package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/stores"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type createStoreRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=120"`
	Slug           string  `json:"slug" validate:"omitempty,max=120"`
	IsDefault      bool    `json:"is_default"`
	IsActive       *bool   `json:"is_active"`
	InvoiceName    *string `json:"invoice_name"`
	InvoiceAddress *string `json:"invoice_address"`
	InvoicePhone   *string `json:"invoice_phone"`
}

type updateStoreRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=120"`
	Slug           *string `json:"slug" validate:"omitempty,max=120"`
	IsDefault      *bool   `json:"is_default"`
	IsActive       *bool   `json:"is_active"`
	InvoiceName    *string `json:"invoice_name"`
	InvoiceAddress *string `json:"invoice_address"`
	InvoicePhone   *string `json:"invoice_phone"`
}

type selectStoreRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
}

// StoreList returns every store. Admin only.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// StoreAccessible returns the active stores the actor can select.
func StoreAccessible(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListAccessible(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "storeId"), "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := svc.GetByID(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createStoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), stores.CreateStoreInput{
			Name:           req.Name,
			Slug:           req.Slug,
			IsDefault:      req.IsDefault,
			IsActive:       req.IsActive,
			InvoiceName:    req.InvoiceName,
			InvoiceAddress: req.InvoiceAddress,
			InvoicePhone:   req.InvoicePhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "storeId"), "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateStoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, stores.UpdateStoreInput{
			Name:           req.Name,
			Slug:           req.Slug,
			IsDefault:      req.IsDefault,
			IsActive:       req.IsActive,
			InvoiceName:    req.InvoiceName,
			InvoiceAddress: req.InvoiceAddress,
			InvoicePhone:   req.InvoicePhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func StoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "storeId"), "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "store deleted"})
	}
}

// StoreSelect validates the candidate store and persists the selection
// cookie. Idempotent; re-selecting the same store refreshes the cookie.
func StoreSelect(svc stores.Service, cookieMgr *cookies.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectStoreRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(req.StoreID, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.ValidateSelectable(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookieMgr.SetCurrentStore(w, store.ID.String())
		responses.WriteSuccess(w, store)
	}
}
