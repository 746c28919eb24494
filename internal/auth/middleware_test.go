package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelms/internal/model"
)

type memoryTokenStore struct {
	blacklisted map[string]bool
}

func (m *memoryTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	return nil
}

func (m *memoryTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	return uuid.Nil, ErrRefreshTokenNotFound
}

func (m *memoryTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return nil
}

func (m *memoryTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.blacklisted[tokenID] = true
	return nil
}

func (m *memoryTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	return m.blacklisted[tokenID], nil
}

func (m *memoryTokenStore) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func newProtectedServer(svc *JWTService, store TokenStoreInterface) *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTMiddleware(svc, store))
	g.GET("/me", func(c echo.Context) error {
		claims, _ := ClaimsFromContext(c)
		return c.String(http.StatusOK, claims.Email)
	})
	g.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireRole(model.RoleAdmin))
	return e
}

func doRequest(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	svc := NewJWTService("test-secret")
	store := &memoryTokenStore{blacklisted: map[string]bool{}}
	e := newProtectedServer(svc, store)
	user := testUser()

	accessID, access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	_, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(e, "/me", "").Code)
	})

	t.Run("valid access token", func(t *testing.T) {
		rec := doRequest(e, "/me", access)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.Email, rec.Body.String())
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(e, "/me", refresh).Code)
	})

	t.Run("customer cannot reach admin route", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, doRequest(e, "/admin", access).Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		store.blacklisted[accessID] = true
		assert.Equal(t, http.StatusUnauthorized, doRequest(e, "/me", access).Code)
	})
}

func TestRequireRole_Admin(t *testing.T) {
	svc := NewJWTService("test-secret")
	e := newProtectedServer(svc, &memoryTokenStore{blacklisted: map[string]bool{}})

	admin := &model.User{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}
	_, token, err := svc.GenerateAccessToken(admin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, doRequest(e, "/admin", token).Code)
}
