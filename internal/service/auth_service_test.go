package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cetlabs/cetexam-backend/internal/config"
)

func testAuthService(expiry time.Duration) *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  expiry,
		BcryptCost: 4, // Minimum cost keeps the suite fast
	})
}

func TestPasswordHashRoundTrip(t *testing.T) {
	auth := testAuthService(time.Hour)

	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, auth.CheckPassword(hash, "s3cret-pass"))
	require.ErrorIs(t, auth.CheckPassword(hash, "wrong-pass"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	auth := testAuthService(time.Hour)
	userID := uuid.New()

	token, err := auth.GenerateToken(userID, "admin")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, userID.String(), claims.UserID)
	require.Equal(t, "admin", claims.Role)

	parsed, err := claims.SubjectID()
	require.NoError(t, err)
	require.Equal(t, userID, parsed)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	auth := testAuthService(time.Hour)
	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})

	token, err := other.GenerateToken(uuid.New(), "student")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenExpiredRejected(t *testing.T) {
	auth := testAuthService(-time.Minute)

	token, err := auth.GenerateToken(uuid.New(), "student")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	auth := testAuthService(time.Hour)

	_, err := auth.ValidateToken("not.a.token")
	require.Error(t, err)
}
