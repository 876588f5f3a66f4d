package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/internal/stores"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

// AdminStore resolves the store from the selection cookie and verifies the
// actor can access it. Used by every mutating store-scoped route.
func AdminStore(resolver *stores.Resolver, guard *access.Guard, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := resolveAdminStore(w, r, resolver, guard, logg)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// QueryStore resolves the store per the admin query flag: `admin=true` uses
// the selection cookie plus an access check, anything else resolves the
// public default store. Used by read routes shared with the storefront.
func QueryStore(resolver *stores.Resolver, guard *access.Guard, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, _ := strconv.ParseBool(r.URL.Query().Get("admin"))
			if admin {
				ctx, ok := resolveAdminStore(w, r, resolver, guard, logg)
				if !ok {
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			store, err := resolver.ResolvePublic(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithStoreID(r.Context(), store.ID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, store.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveAdminStore(w http.ResponseWriter, r *http.Request, resolver *stores.Resolver, guard *access.Guard, logg *logger.Logger) (context.Context, bool) {
	actor := ActorFromContext(r.Context())
	if actor == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
		return nil, false
	}

	storeID, err := resolver.ResolveAdmin(cookies.CurrentStore(r))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}

	if err := guard.RequireAccess(r.Context(), actor, storeID); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}

	c := WithStoreID(r.Context(), storeID)
	if logg != nil {
		c = logg.WithStoreID(c, storeID.String())
	}
	return c, true
}
