package controllers

import (
	"net/http"

	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/api/validators"
	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/internal/auth"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	"github.com/tablemesa/resto-backend/pkg/identity"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

type sessionPayload struct {
	ExpiresIn int64  `json:"expires_in"`
	TokenType string `json:"token_type"`
}

type actorPayload struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Role        string   `json:"role"`
	StoreIDs    []string `json:"store_ids"`
}

func newSessionPayload(session *identity.Session) sessionPayload {
	return sessionPayload{ExpiresIn: session.ExpiresIn, TokenType: session.TokenType}
}

// AuthLogin signs in against the identity provider and sets both session
// cookies. Tokens travel only in HTTP-only cookies, never in the body.
func AuthLogin(svc auth.Service, cookieMgr *cookies.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.LoginInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, actor, err := svc.Login(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookieMgr.SetSession(w, session.AccessToken, session.RefreshToken)
		responses.WriteSuccess(w, map[string]any{
			"user":    actorToPayload(actor),
			"session": newSessionPayload(session),
		})
	}
}

// AuthLogout revokes the provider session best-effort and clears cookies.
func AuthLogout(svc auth.Service, cookieMgr *cookies.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := cookies.AccessToken(r); token != "" {
			svc.Logout(r.Context(), token)
		}
		cookieMgr.ClearSession(w)
		cookieMgr.ClearCurrentStore(w)
		responses.WriteSuccess(w, map[string]string{"message": "logged out"})
	}
}

// AuthRefresh rotates the session cookies using the refresh token.
func AuthRefresh(svc auth.Service, cookieMgr *cookies.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Refresh(r.Context(), cookies.RefreshToken(r))
		if err != nil {
			cookieMgr.ClearSession(w)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := svc.ResolveActor(r.Context(), session.AccessToken)
		if err != nil {
			cookieMgr.ClearSession(w)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookieMgr.SetSession(w, session.AccessToken, session.RefreshToken)
		responses.WriteSuccess(w, map[string]any{
			"user":    actorToPayload(actor),
			"session": newSessionPayload(session),
		})
	}
}

func actorToPayload(actor *access.Actor) actorPayload {
	storeIDs := make([]string, 0, len(actor.StoreIDs))
	for _, id := range actor.StoreIDs {
		storeIDs = append(storeIDs, id.String())
	}
	return actorPayload{
		ID:          actor.UserID.String(),
		Email:       actor.Email,
		DisplayName: actor.DisplayName,
		Role:        string(actor.Role),
		StoreIDs:    storeIDs,
	}
}
