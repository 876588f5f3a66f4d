package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tablemesa/resto-backend/pkg/config"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

var (
	errURLRequired     = errors.New("identity provider url is required")
	errAnonKeyRequired = errors.New("identity anon key is required")
	errLoggerRequired  = errors.New("identity logger is required")
)

// Client wraps the external identity provider's auth API with centralized
// auth headers, logging, and error mapping. Admin operations require the
// service role key.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	anonKey        string
	serviceRoleKey string
	logger         *logger.Logger
}

// User is the provider's view of an authenticated identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session holds the token pair minted by the provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

type apiError struct {
	Code             int    `json:"code"`
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// NewClient initializes the identity wrapper and validates the configuration.
func NewClient(cfg config.IdentityConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errURLRequired
	}
	anonKey := strings.TrimSpace(cfg.AnonKey)
	if anonKey == "" {
		return nil, errAnonKeyRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		anonKey:        anonKey,
		serviceRoleKey: strings.TrimSpace(cfg.ServiceRoleKey),
		logger:         logg,
	}, nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}

	var session Session
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, "", payload, &session)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUnauthorized {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	return &session, nil
}

// RefreshSession trades a refresh token for a fresh token pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token is required")
	}
	payload := map[string]string{"refresh_token": refreshToken}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", c.anonKey, "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser validates an access token with the provider and returns its identity.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/user", c.anonKey, accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session on the provider side. Revocation failures are
// not fatal for logout; callers may log and continue.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/logout", c.anonKey, accessToken, nil, nil)
}

// AdminCreateUser provisions a confirmed user on the provider.
func (c *Client) AdminCreateUser(ctx context.Context, email, password string) (*User, error) {
	if c.serviceRoleKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity service role key not configured")
	}
	payload := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}

	var user User
	if err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceRoleKey, c.serviceRoleKey, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminUpdateUserPassword rotates a user's password on the provider.
func (c *Client) AdminUpdateUserPassword(ctx context.Context, externalID, password string) error {
	if c.serviceRoleKey == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "identity service role key not configured")
	}
	payload := map[string]string{"password": password}
	path := "/admin/users/" + url.PathEscape(externalID)
	return c.do(ctx, http.MethodPut, path, c.serviceRoleKey, c.serviceRoleKey, payload, nil)
}

// AdminDeleteUser removes a user from the provider.
func (c *Client) AdminDeleteUser(ctx context.Context, externalID string) error {
	if c.serviceRoleKey == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "identity service role key not configured")
	}
	path := "/admin/users/" + url.PathEscape(externalID)
	return c.do(ctx, http.MethodDelete, path, c.serviceRoleKey, c.serviceRoleKey, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, apiKey, bearer string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding identity request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building identity request")
	}
	req.Header.Set("apikey", apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "identity provider unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding identity response")
	}
	return nil
}

func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed apiError
	_ = json.Unmarshal(raw, &parsed)
	message := parsed.Message
	if message == "" {
		message = parsed.ErrorDescription
	}
	if message == "" {
		message = parsed.Error
	}
	if message == "" {
		message = fmt.Sprintf("identity provider returned %s", resp.Status)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case resp.StatusCode == http.StatusBadRequest:
		// GoTrue reports bad credentials as 400 invalid_grant
		if strings.Contains(strings.ToLower(parsed.Error), "invalid_grant") ||
			strings.Contains(strings.ToLower(message), "invalid login credentials") {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case resp.StatusCode == http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, message)
	case resp.StatusCode == http.StatusTooManyRequests:
		return pkgerrors.New(pkgerrors.CodeRateLimit, message)
	case resp.StatusCode >= 500:
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, message)
	}
}
