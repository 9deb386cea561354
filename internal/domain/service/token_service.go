package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session token verification failures. The delivery layer collapses all three
// into one generic 401 so forged tokens get no distinguishing feedback.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature mismatch")
	ErrTokenMalformed = errors.New("token malformed")
)

// SessionClaims is the decoded content of a session token.
type SessionClaims struct {
	AccountID uuid.UUID

	// RequiresTwoFactor marks an intermediate token issued after a password
	// check for a two-factor account. It authorizes nothing except the
	// two-factor verification operation.
	RequiresTwoFactor bool

	ExpiresAt time.Time
}

// TokenService defines the interface for signing and verifying session tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Sign creates a signed session token. A pending two-factor token gets
	// the short TTL class; a fully authenticated token gets the standard one.
	Sign(accountID uuid.UUID, requiresTwoFactor bool) (string, error)

	// Verify checks a token and returns its claims, or exactly one of
	// ErrTokenExpired, ErrTokenSignature, ErrTokenMalformed.
	Verify(token string) (*SessionClaims, error)

	// SessionTTL returns the lifetime of a fully authenticated token.
	SessionTTL() time.Duration

	// PendingTTL returns the lifetime of a pending two-factor token.
	PendingTTL() time.Duration
}
