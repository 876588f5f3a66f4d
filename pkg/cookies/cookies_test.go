package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tablemesa/resto-backend/pkg/config"
)

func testManager(secure bool) *Manager {
	return NewManager(config.CookieConfig{
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		StoreSelectTTL:  time.Hour,
	}, secure)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetSessionAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	testManager(true).SetSession(rec, "access-value", "refresh-value")

	access := findCookie(t, rec, AccessTokenName)
	if access.Value != "access-value" {
		t.Fatalf("unexpected access value %q", access.Value)
	}
	if !access.HttpOnly {
		t.Fatal("access cookie must be HttpOnly")
	}
	if !access.Secure {
		t.Fatal("access cookie must be Secure when manager is secure")
	}
	if access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected SameSite %v", access.SameSite)
	}
	if access.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("unexpected MaxAge %d", access.MaxAge)
	}

	refresh := findCookie(t, rec, RefreshTokenName)
	if refresh.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected refresh MaxAge %d", refresh.MaxAge)
	}
}

func TestInsecureManagerSkipsSecureFlag(t *testing.T) {
	rec := httptest.NewRecorder()
	testManager(false).SetCurrentStore(rec, "store-1")

	c := findCookie(t, rec, CurrentStoreName)
	if c.Secure {
		t.Fatal("dev cookies should not be Secure")
	}
}

func TestClearSessionExpiresCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	testManager(true).ClearSession(rec)

	for _, name := range []string{AccessTokenName, RefreshTokenName} {
		c := findCookie(t, rec, name)
		if c.MaxAge >= 0 {
			t.Fatalf("cookie %q should be expired, MaxAge=%d", name, c.MaxAge)
		}
	}
}

func TestReadHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenName, Value: "tok"})
	req.AddCookie(&http.Cookie{Name: CurrentStoreName, Value: "store-9"})

	if got := AccessToken(req); got != "tok" {
		t.Fatalf("unexpected access token %q", got)
	}
	if got := RefreshToken(req); got != "" {
		t.Fatalf("expected empty refresh token, got %q", got)
	}
	if got := CurrentStore(req); got != "store-9" {
		t.Fatalf("unexpected store id %q", got)
	}
}
