package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSessionStore(rdb, time.Hour), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ident := Identity{AccountID: uuid.New(), Role: RoleDoctor}
	token, err := store.Start(ctx, ident)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(token))
	}

	got, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.AccountID != ident.AccountID || got.Role != RoleDoctor {
		t.Errorf("identity mismatch: %+v", got)
	}
}

func TestSessionStore_TokensAreUnique(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ident := Identity{AccountID: uuid.New(), Role: RolePatient}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := store.Start(ctx, ident)
		if err != nil {
			t.Fatalf("Start() error: %v", err)
		}
		if seen[token] {
			t.Fatal("duplicate session token")
		}
		seen[token] = true
	}
}

func TestSessionStore_End(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Start(ctx, Identity{AccountID: uuid.New(), Role: RolePatient})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if err := store.End(ctx, token); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	if _, err := store.Get(ctx, token); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after End, got %v", err)
	}

	// Ending again is a no-op.
	if err := store.End(ctx, token); err != nil {
		t.Errorf("second End() error: %v", err)
	}
}

func TestSessionStore_UnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Get(context.Background(), "deadbeef"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Start(ctx, Identity{AccountID: uuid.New(), Role: RolePatient})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	mr.FastForward(time.Hour + time.Second)

	if _, err := store.Get(ctx, token); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after TTL, got %v", err)
	}
}

func TestSessionStore_RoleSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ident := Identity{AccountID: uuid.New(), Role: RolePatient}
	token, err := store.Start(ctx, ident)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	// Mutating the caller's copy after issuance must not affect the session.
	ident.Role = RoleAdmin

	got, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Role != RolePatient {
		t.Errorf("session role changed after issuance: %s", got.Role)
	}
}

func TestSessionMiddleware(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ident := Identity{AccountID: uuid.New(), Role: RoleDoctor}
	token, err := store.Start(ctx, ident)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	e := echo.New()
	handler := SessionMiddleware(store)(func(c echo.Context) error {
		got := IdentityFromContext(c.Request().Context())
		if got == nil {
			return c.NoContent(http.StatusUnauthorized)
		}
		if got.AccountID != ident.AccountID {
			t.Error("wrong identity resolved")
		}
		if SessionTokenFromEchoContext(c) != token {
			t.Error("token not stored in echo context")
		}
		return c.NoContent(http.StatusOK)
	})

	// Bearer header.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("bearer: expected 200, got %d", rec.Code)
	}

	// Cookie.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("cookie: expected 200, got %d", rec.Code)
	}

	// No token proceeds anonymously.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected pass-through with no identity, got %d", rec.Code)
	}

	// Ended session also proceeds anonymously.
	if err := store.End(ctx, token); err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ended session: expected anonymous pass-through, got %d", rec.Code)
	}
}
