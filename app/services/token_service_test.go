package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTokenService(t *testing.T) TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret-key-for-jwt-signing-32-chars", "escapadas-go", "escapadas-admin", 15*time.Minute)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "escapadas-go", "escapadas-admin", 15*time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestGenerateAndValidateAdminToken(t *testing.T) {
	svc := createTestTokenService(t)

	token, err := svc.GenerateAdminToken("reviewer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reviewer", claims.Username)
	assert.Equal(t, "escapadas-go", claims.Issuer)
	assert.Contains(t, claims.Audience, "escapadas-admin")
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAdminTokenRejectsGarbage(t *testing.T) {
	svc := createTestTokenService(t)

	_, err := svc.ValidateAdminToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAdminTokenRejectsWrongSecret(t *testing.T) {
	svc := createTestTokenService(t)

	other, err := NewTokenService("another-secret-key-with-enough-length", "escapadas-go", "escapadas-admin", 15*time.Minute)
	require.NoError(t, err)

	token, err := other.GenerateAdminToken("reviewer")
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAdminTokenRejectsWrongAudience(t *testing.T) {
	svc := createTestTokenService(t)

	other, err := NewTokenService("test-secret-key-for-jwt-signing-32-chars", "escapadas-go", "someone-else", 15*time.Minute)
	require.NoError(t, err)

	token, err := other.GenerateAdminToken("reviewer")
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAdminTokenExpired(t *testing.T) {
	svc, err := NewTokenService("test-secret-key-for-jwt-signing-32-chars", "escapadas-go", "escapadas-admin", -1*time.Minute)
	require.NoError(t, err)

	// Negative TTL falls back to the 12h default, so force expiry directly.
	impl, ok := svc.(*TokenServiceImpl)
	require.True(t, ok)
	impl.accessTokenTTL = -1 * time.Minute

	token, err := svc.GenerateAdminToken("reviewer")
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.Error(t, VerifyPassword(hash, "wrong password"))
}
