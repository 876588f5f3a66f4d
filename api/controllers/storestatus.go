package controllers

import (
	"net/http"

	"github.com/tablemesa/resto-backend/api/middleware"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/storestatus"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type updateStatusRequest struct {
	IsOpen  *bool   `json:"is_open"`
	Message *string `json:"message" validate:"omitempty,max=500"`
}

// StoreStatusGet returns the open/closed banner, creating defaults on first
// read of a store that has none.
func StoreStatusGet(svc storestatus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Get(r.Context(), middleware.StoreIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func StoreStatusUpdate(svc storestatus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Update(r.Context(), middleware.StoreIDFromContext(r.Context()), storestatus.UpdateStatusInput{
			IsOpen:  req.IsOpen,
			Message: req.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
