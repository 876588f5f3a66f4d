package cookies

import (
	"net/http"
	"time"

	"github.com/tablemesa/resto-backend/pkg/config"
)

// Cookie names shared with the storefront and admin frontends.
const (
	AccessTokenName  = "sb-access-token"
	RefreshTokenName = "sb-refresh-token"
	CurrentStoreName = "current-store-id"
)

// Manager writes and clears the session cookies with consistent attributes.
type Manager struct {
	cfg    config.CookieConfig
	secure bool
}

// NewManager builds a cookie manager; secure marks cookies Secure (prod only).
func NewManager(cfg config.CookieConfig, secure bool) *Manager {
	return &Manager{cfg: cfg, secure: secure}
}

// SetSession writes the access and refresh token cookies.
func (m *Manager) SetSession(w http.ResponseWriter, accessToken, refreshToken string) {
	m.set(w, AccessTokenName, accessToken, m.cfg.AccessTokenTTL)
	m.set(w, RefreshTokenName, refreshToken, m.cfg.RefreshTokenTTL)
}

// ClearSession expires both token cookies.
func (m *Manager) ClearSession(w http.ResponseWriter) {
	m.clear(w, AccessTokenName)
	m.clear(w, RefreshTokenName)
}

// SetCurrentStore records the admin's selected store.
func (m *Manager) SetCurrentStore(w http.ResponseWriter, storeID string) {
	m.set(w, CurrentStoreName, storeID, m.cfg.StoreSelectTTL)
}

// ClearCurrentStore expires the store selection cookie.
func (m *Manager) ClearCurrentStore(w http.ResponseWriter) {
	m.clear(w, CurrentStoreName)
}

// AccessToken reads the access token cookie; empty when absent.
func AccessToken(r *http.Request) string {
	return read(r, AccessTokenName)
}

// RefreshToken reads the refresh token cookie; empty when absent.
func RefreshToken(r *http.Request) string {
	return read(r, RefreshTokenName)
}

// CurrentStore reads the selected store cookie; empty when absent.
func CurrentStore(r *http.Request) string {
	return read(r, CurrentStoreName)
}

func read(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *Manager) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
