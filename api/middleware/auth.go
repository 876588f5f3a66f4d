package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/identity"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

// expiryWindow triggers a proactive refresh when the access token is about to
// lapse, skipping a provider round trip that would fail anyway.
const expiryWindow = 30 * time.Second

type actorResolver interface {
	ResolveActor(ctx context.Context, accessToken string) (*access.Actor, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
}

// Auth resolves the session cookies into an actor on the request context.
// An invalid or expiring access token triggers one silent refresh, re-issuing
// both cookies; refresh failure clears them. Requests proceed unauthenticated
// on any failure; route guards decide whether that is acceptable.
func Auth(resolver actorResolver, cookieMgr *cookies.Manager, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			accessToken := cookies.AccessToken(r)
			refreshToken := cookies.RefreshToken(r)

			if accessToken == "" && refreshToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			if accessToken != "" && !identity.ExpiresWithin(accessToken, expiryWindow) {
				if actor, err := resolver.ResolveActor(ctx, accessToken); err == nil {
					next.ServeHTTP(w, r.WithContext(actorContext(ctx, logg, actor)))
					return
				} else if !isUnauthorized(err) {
					if logg != nil {
						logg.Warn(ctx, "actor resolution failed, proceeding unauthenticated")
					}
					next.ServeHTTP(w, r)
					return
				}
			}

			// Access token missing, expiring, or rejected. One silent refresh.
			if refreshToken == "" {
				cookieMgr.ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.Refresh(ctx, refreshToken)
			if err != nil {
				cookieMgr.ClearSession(w)
				if logg != nil && !isUnauthorized(err) {
					logg.Warn(ctx, "session refresh failed, proceeding unauthenticated")
				}
				next.ServeHTTP(w, r)
				return
			}

			actor, err := resolver.ResolveActor(ctx, session.AccessToken)
			if err != nil {
				cookieMgr.ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}

			cookieMgr.SetSession(w, session.AccessToken, session.RefreshToken)
			next.ServeHTTP(w, r.WithContext(actorContext(ctx, logg, actor)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ActorFromContext(r.Context()) == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actorContext(ctx context.Context, logg *logger.Logger, actor *access.Actor) context.Context {
	ctx = WithActor(ctx, actor)
	if logg != nil && actor != nil {
		ctx = logg.WithUserID(ctx, actor.UserID.String())
	}
	return ctx
}

func isUnauthorized(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeUnauthorized
}
