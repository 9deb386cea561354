package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"

	"aimpact/config"
)

func totpTestConfig() *config.Config {
	return &config.Config{
		TOTP: &config.TOTPConfig{Issuer: "AimCrypto"},
	}
}

func TestTOTPService_GenerateSecret(t *testing.T) {
	svc := NewTOTPService(totpTestConfig())

	enrollment, err := svc.GenerateSecret("user@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, enrollment)
	assert.NotEmpty(t, enrollment.Secret)
	assert.True(t, strings.HasPrefix(enrollment.ProvisioningURI, "otpauth://totp/"))
	assert.Contains(t, enrollment.ProvisioningURI, "AimCrypto")
	assert.Contains(t, enrollment.ProvisioningURI, "user@example.com")
}

func TestTOTPService_GenerateSecret_UniquePerCall(t *testing.T) {
	svc := NewTOTPService(totpTestConfig())

	first, err := svc.GenerateSecret("user@example.com")
	assert.NoError(t, err)
	second, err := svc.GenerateSecret("user@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestTOTPService_ProvisioningURI(t *testing.T) {
	svc := NewTOTPService(totpTestConfig())

	uri := svc.ProvisioningURI("user@example.com", "JBSWY3DPEHPK3PXP")
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/AimCrypto:user@example.com?"))
	assert.Contains(t, uri, "secret=JBSWY3DPEHPK3PXP")
	assert.Contains(t, uri, "issuer=AimCrypto")
	assert.Contains(t, uri, "period=30")
	assert.Contains(t, uri, "digits=6")
	assert.Contains(t, uri, "algorithm=SHA1")
}

func TestTOTPService_Verify(t *testing.T) {
	svc := NewTOTPService(totpTestConfig())

	enrollment, err := svc.GenerateSecret("user@example.com")
	assert.NoError(t, err)

	now := time.Now()
	code, err := totp.GenerateCodeCustom(enrollment.Secret, now, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	assert.NoError(t, err)

	assert.True(t, svc.Verify(enrollment.Secret, code, now))
}

func TestTOTPService_Verify_SkewWindow(t *testing.T) {
	svc := NewTOTPService(totpTestConfig())

	enrollment, err := svc.GenerateSecret("user@example.com")
	assert.NoError(t, err)

	now := time.Now()
	code, err := totp.GenerateCodeCustom(enrollment.Secret, now, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	assert.NoError(t, err)

	// A code from the previous or next period is still accepted.
	assert.True(t, svc.Verify(enrollment.Secret, code, now.Add(30*time.Second)))
	assert.True(t, svc.Verify(enrollment.Secret, code, now.Add(-30*time.Second)))

	// Two periods away is rejected.
	assert.False(t, svc.Verify(enrollment.Secret, code, now.Add(90*time.Second)))
}

func TestTOTPService_Verify_RejectsBadInput(t *testing.T) {
	svc := NewTOTPService(totpTestConfig())

	enrollment, err := svc.GenerateSecret("user@example.com")
	assert.NoError(t, err)

	now := time.Now()
	assert.False(t, svc.Verify(enrollment.Secret, "", now))
	assert.False(t, svc.Verify(enrollment.Secret, "12345", now))
	assert.False(t, svc.Verify(enrollment.Secret, "1234567", now))
	assert.False(t, svc.Verify(enrollment.Secret, "12345a", now))
	assert.False(t, svc.Verify("not-a-secret", "123456", now))
}
