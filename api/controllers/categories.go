package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/categories"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type createCategoryRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=120"`
	SortOrder int    `json:"sort_order" validate:"omitempty,min=0"`
}

type updateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	SortOrder *int    `json:"sort_order" validate:"omitempty,min=0"`
}

func CategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func CategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCategoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Create(r.Context(), middleware.StoreIDFromContext(r.Context()), categories.CreateCategoryInput{
			Name:      req.Name,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func CategoryUpdate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryId"), "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), id, categories.UpdateCategoryInput{
			Name:      req.Name,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func CategoryDelete(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryId"), "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.StoreIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "category deleted"})
	}
}
