package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tablemesa/resto-backend/pkg/config"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.IdentityConfig{
		URL:            srv.URL,
		AnonKey:        "anon-key",
		ServiceRoleKey: "service-key",
		RequestTimeout: 5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestSignInWithPassword(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.String())
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Fatalf("unexpected apikey header %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["email"] != "owner@example.com" {
			t.Fatalf("unexpected email %q", body["email"])
		}
		_ = json.NewEncoder(w).Encode(Session{
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresIn:    3600,
			User:         User{ID: "ext-1", Email: "owner@example.com"},
		})
	})

	session, err := client.SignInWithPassword(context.Background(), "owner@example.com", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword returned error: %v", err)
	}
	if session.AccessToken != "at" || session.RefreshToken != "rt" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.User.ID != "ext-1" {
		t.Fatalf("unexpected user %+v", session.User)
	}
}

func TestSignInBadCredentials(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), "owner@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestGetUserSendsBearer(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(User{ID: "ext-2", Email: "u@example.com"})
	})

	user, err := client.GetUser(context.Background(), "access-token")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if user.ID != "ext-2" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestGetUserExpiredToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"JWT expired"}`))
	})

	_, err := client.GetUser(context.Background(), "stale")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminCreateUserRequiresServiceKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client, err := NewClient(config.IdentityConfig{
		URL:     srv.URL,
		AnonKey: "anon-key",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = client.AdminCreateUser(context.Background(), "new@example.com", "pw")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAdminDeleteUser(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/admin/users/ext-9" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Fatalf("unexpected apikey header %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.AdminDeleteUser(context.Background(), "ext-9"); err != nil {
		t.Fatalf("AdminDeleteUser returned error: %v", err)
	}
}

func TestExpiresWithin(t *testing.T) {
	mint := func(exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		})
		signed, err := token.SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("signing token: %v", err)
		}
		return signed
	}

	if ExpiresWithin(mint(time.Now().Add(time.Hour)), time.Minute) {
		t.Fatal("fresh token should not report as expiring")
	}
	if !ExpiresWithin(mint(time.Now().Add(10*time.Second)), time.Minute) {
		t.Fatal("token inside window should report as expiring")
	}
	if !ExpiresWithin("garbage", time.Minute) {
		t.Fatal("unparseable token should report as expiring")
	}
}
