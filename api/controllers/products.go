package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/products"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type createProductRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=120"`
	Description    *string `json:"description"`
	ImageURL       *string `json:"image_url" validate:"omitempty,url"`
	ImageObjectKey *string `json:"image_object_key"`
}

type updateProductRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description    *string `json:"description"`
	ImageURL       *string `json:"image_url" validate:"omitempty,url"`
	ImageObjectKey *string `json:"image_object_key"`
}

type copyProductsRequest struct {
	ProductIDs    []uuid.UUID `json:"product_ids" validate:"required,min=1"`
	TargetStoreID uuid.UUID   `json:"target_store_id" validate:"required"`
}

func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetByID(r.Context(), middleware.StoreIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), middleware.StoreIDFromContext(r.Context()), products.CreateProductInput{
			Name:           req.Name,
			Description:    req.Description,
			ImageURL:       req.ImageURL,
			ImageObjectKey: req.ImageObjectKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), id, products.UpdateProductInput{
			Name:           req.Name,
			Description:    req.Description,
			ImageURL:       req.ImageURL,
			ImageObjectKey: req.ImageObjectKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.StoreIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "product deleted"})
	}
}

// ProductCopy duplicates products from the resolved store into another store
// the actor can access.
func ProductCopy(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req copyProductsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		copies, err := svc.Copy(r.Context(), middleware.ActorFromContext(r.Context()), middleware.StoreIDFromContext(r.Context()), products.CopyProductsInput{
			ProductIDs:    req.ProductIDs,
			TargetStoreID: req.TargetStoreID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, copies)
	}
}
