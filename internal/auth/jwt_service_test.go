package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelms/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "guest@example.com", Role: model.RoleCustomer}
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := testUser()

	tokenID, token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, claims.ID)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	_, token, err := NewJWTService("secret-a").GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	svc.now = func() time.Time { return time.Now().Add(-2 * AccessTokenExpiry) }

	_, token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	user := testUser()

	_, access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err, "access tokens must not refresh")

	refreshID, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, refreshID, claims.ID)
}

func TestJWTService_RemainingTTL(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	ttl := svc.RemainingTTL(claims)
	assert.True(t, ttl > 0 && ttl <= AccessTokenExpiry)
}
