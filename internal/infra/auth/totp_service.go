// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"aimpact/config"
	"aimpact/internal/domain/service"
	"aimpact/internal/errors"
)

// totpService implements the TOTPService interface on RFC 6238 time-based
// one-time passwords.
type totpService struct {
	issuer string
}

// NewTOTPService creates a TOTP service using the configured issuer name.
// The issuer appears in authenticator apps next to the account label.
func NewTOTPService(cfg *config.Config) service.TOTPService {
	return &totpService{issuer: cfg.TOTP.Issuer}
}

// GenerateSecret creates a fresh random secret for the given account and the
// otpauth:// provisioning URI that authenticator apps scan.
func (s *totpService) GenerateSecret(accountName string) (*service.TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate totp secret")
	}

	return &service.TOTPEnrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
	}, nil
}

// Verify checks a 6-digit code against the secret at the given time.
// One period of clock skew is tolerated in each direction, matching what
// authenticator apps expect.
func (s *totpService) Verify(secret, code string, now time.Time) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	valid, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

// ProvisioningURI rebuilds the otpauth:// URI for a stored secret, in the
// same shape totp.Generate emits at enrollment.
func (s *totpService) ProvisioningURI(accountName, secret string) string {
	query := url.Values{}
	query.Set("algorithm", otp.AlgorithmSHA1.String())
	query.Set("digits", otp.DigitsSix.String())
	query.Set("issuer", s.issuer)
	query.Set("period", "30")
	query.Set("secret", secret)

	uri := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + s.issuer + ":" + accountName,
		RawQuery: query.Encode(),
	}

	return uri.String()
}
