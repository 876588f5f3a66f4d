package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/internal/access"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/cookies"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/identity"
)

type stubResolver struct {
	actorByToken map[string]*access.Actor
	session      *identity.Session
	refreshErr   error
	refreshCalls int
}

func (s *stubResolver) ResolveActor(ctx context.Context, accessToken string) (*access.Actor, error) {
	if actor, ok := s.actorByToken[accessToken]; ok {
		return actor, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token rejected")
}

func (s *stubResolver) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	s.refreshCalls++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.session, nil
}

func mintToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return signed
}

func testCookieManager() *cookies.Manager {
	return cookies.NewManager(config.CookieConfig{
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		StoreSelectTTL:  time.Hour,
	}, false)
}

func captureActor(t *testing.T, handler func(http.Handler) http.Handler, req *http.Request) (*access.Actor, *httptest.ResponseRecorder) {
	t.Helper()
	var got *access.Actor
	rec := httptest.NewRecorder()
	handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return got, rec
}

func TestAuthNoCookiesIsAnonymous(t *testing.T) {
	resolver := &stubResolver{}
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)

	actor, rec := captureActor(t, Auth(resolver, testCookieManager(), nil), req)
	if actor != nil {
		t.Fatal("expected anonymous request")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAuthValidTokenResolvesActor(t *testing.T) {
	token := mintToken(t, time.Hour)
	want := &access.Actor{UserID: uuid.New(), Email: "owner@example.com"}
	resolver := &stubResolver{actorByToken: map[string]*access.Actor{token: want}}
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: token})

	actor, _ := captureActor(t, Auth(resolver, testCookieManager(), nil), req)
	if actor == nil || actor.UserID != want.UserID {
		t.Fatalf("expected actor %v, got %v", want, actor)
	}
	if resolver.refreshCalls != 0 {
		t.Fatalf("expected no refresh, got %d", resolver.refreshCalls)
	}
}

func TestAuthExpiredTokenSilentlyRefreshes(t *testing.T) {
	stale := mintToken(t, -time.Minute)
	fresh := mintToken(t, time.Hour)
	want := &access.Actor{UserID: uuid.New(), Email: "owner@example.com"}
	resolver := &stubResolver{
		actorByToken: map[string]*access.Actor{fresh: want},
		session:      &identity.Session{AccessToken: fresh, RefreshToken: "new-refresh"},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: stale})
	req.AddCookie(&http.Cookie{Name: "sb-refresh-token", Value: "old-refresh"})

	actor, rec := captureActor(t, Auth(resolver, testCookieManager(), nil), req)
	if actor == nil || actor.UserID != want.UserID {
		t.Fatalf("expected refreshed actor, got %v", actor)
	}
	if resolver.refreshCalls != 1 {
		t.Fatalf("expected one refresh, got %d", resolver.refreshCalls)
	}

	reissued := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sb-access-token" && c.Value == fresh {
			reissued = true
		}
	}
	if !reissued {
		t.Fatal("expected access cookie re-issue after refresh")
	}
}

func TestAuthRefreshFailureClearsCookies(t *testing.T) {
	stale := mintToken(t, -time.Minute)
	resolver := &stubResolver{refreshErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh rejected")}
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: stale})
	req.AddCookie(&http.Cookie{Name: "sb-refresh-token", Value: "old-refresh"})

	actor, rec := captureActor(t, Auth(resolver, testCookieManager(), nil), req)
	if actor != nil {
		t.Fatal("expected unauthenticated after failed refresh")
	}

	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if (c.Name == "sb-access-token" || c.Name == "sb-refresh-token") && c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 2 {
		t.Fatalf("expected both session cookies cleared, got %d", cleared)
	}
}

func TestRequireAuthBlocksAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	RequireAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
