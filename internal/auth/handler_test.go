package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/auth"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
	_ "github.com/LifeIsPranav/InventoryMS-BE/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newRouter(t *testing.T, repo auth.Repository) (http.Handler, *auth.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := auth.NewService(repo, shared.NewTokenStore(client, "test_session", time.Hour))

	authenticated := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := svc.Resolve(r.Context(), shared.BearerToken(r))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithCaller(r.Context(), caller)))
		})
	}
	r := chi.NewRouter()
	auth.NewHandler(nil, svc).MountRoutes(r, authenticated)
	return r, svc
}

func seededUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := auth.HashPassword("correctpass")
	require.NoError(t, err)
	return &auth.User{ID: "u-1", Email: "user@test.local", Name: "Dock Lead", PasswordHash: hashed, Role: auth.RoleAdmin, IsActive: true}
}

func TestLoginIssuesTokenAndMeResolvesIt(t *testing.T) {
	router, _ := newRouter(t, &stubRepo{user: seededUser(t)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"user@test.local","password":"correctpass"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Token     string       `json:"token"`
			ExpiresIn int64        `json:"expiresIn"`
			User      auth.Profile `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	require.Equal(t, int64(3600), body.Data.ExpiresIn)
	require.Equal(t, auth.RoleAdmin, body.Data.User.Role)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"email":"user@test.local"`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newRouter(t, &stubRepo{user: seededUser(t)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"user@test.local","password":"wrongpass"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `"kind":"Unauthorized"`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"nobody@test.local","password":"correctpass"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesBody(t *testing.T) {
	router, _ := newRouter(t, &stubRepo{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email","password":"short"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email: must be a valid email")
}

func TestInactiveUserCannotLogin(t *testing.T) {
	user := seededUser(t)
	user.IsActive = false
	_, svc := newRouter(t, &stubRepo{user: user})
	_, err := svc.Authenticate(context.Background(), user.Email, "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
