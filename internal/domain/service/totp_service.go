package service

import "time"

// TOTPEnrollment is the result of generating a new two-factor secret.
type TOTPEnrollment struct {
	// Secret is the base32-encoded shared secret.
	Secret string

	// ProvisioningURI is the otpauth:// URI an authenticator app enrolls
	// from, usually rendered as a QR code.
	ProvisioningURI string
}

// TOTPService defines the interface for time-based one-time-password
// enrollment and verification.
type TOTPService interface {
	// GenerateSecret creates a fresh high-entropy secret labeled with the
	// given account name (the user's email).
	GenerateSecret(accountName string) (*TOTPEnrollment, error)

	// Verify reports whether code matches the secret at the given instant,
	// accepting the current 30-second window and one adjacent window on each
	// side. Malformed codes are rejected without computing any HMAC.
	Verify(secret, code string, now time.Time) bool

	// ProvisioningURI rebuilds the otpauth:// URI for an already stored
	// secret, identical to the one issued at enrollment.
	ProvisioningURI(accountName, secret string) string
}
