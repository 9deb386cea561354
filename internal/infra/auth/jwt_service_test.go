package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"aimpact/config"
	"aimpact/internal/domain/service"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SessionTTL: time.Hour,
			PendingTTL: 5 * time.Minute,
		},
	}
	cfg.SecretKey.Session = secret
	return cfg
}

func TestJWTService_SignAndVerify(t *testing.T) {
	svc, err := NewJWTService(testConfig("test_session_secret_key_very_long_for_testing"))
	assert.NoError(t, err)
	assert.NotNil(t, svc)

	accountID := uuid.New()

	token, err := svc.Sign(accountID, false)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, accountID, claims.AccountID)
	assert.False(t, claims.RequiresTwoFactor)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_PendingTokenCarriesFlagAndShortTTL(t *testing.T) {
	svc, err := NewJWTService(testConfig("test_session_secret_key_very_long_for_testing"))
	assert.NoError(t, err)

	accountID := uuid.New()
	token, err := svc.Sign(accountID, true)
	assert.NoError(t, err)

	claims, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.True(t, claims.RequiresTwoFactor)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_EmptySecretRejected(t *testing.T) {
	svc, err := NewJWTService(testConfig(""))
	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestJWTService_WrongSignature(t *testing.T) {
	signer, err := NewJWTService(testConfig("secret-one-secret-one-secret-one"))
	assert.NoError(t, err)
	verifier, err := NewJWTService(testConfig("secret-two-secret-two-secret-two"))
	assert.NoError(t, err)

	token, err := signer.Sign(uuid.New(), false)
	assert.NoError(t, err)

	claims, err := verifier.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenSignature)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	cfg := testConfig("test_session_secret_key_very_long_for_testing")
	cfg.Auth.SessionTTL = -time.Minute
	svc, err := NewJWTService(cfg)
	assert.NoError(t, err)

	token, err := svc.Sign(uuid.New(), false)
	assert.NoError(t, err)

	claims, err := svc.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTService_MalformedToken(t *testing.T) {
	svc, err := NewJWTService(testConfig("test_session_secret_key_very_long_for_testing"))
	assert.NoError(t, err)

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		claims, err := svc.Verify(tokenString)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, service.ErrTokenMalformed, "token: %q", tokenString)
	}
}

func TestJWTService_TTLAccessors(t *testing.T) {
	svc, err := NewJWTService(testConfig("test_session_secret_key_very_long_for_testing"))
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, svc.SessionTTL())
	assert.Equal(t, 5*time.Minute, svc.PendingTTL())
}
