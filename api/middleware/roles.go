package middleware

import (
	"net/http"

	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

// RequireAdmin gates governance routes: store create/delete, user management,
// default flag changes.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := access.RequireAdmin(ActorFromContext(r.Context())); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
