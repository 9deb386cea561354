// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"aimpact/config"
	"aimpact/internal/domain/service"
)

// sessionClaims is the JWT claim set carried by every session token.
// RequiresTwoFactor marks tokens issued between password login and TOTP
// verification; such tokens only grant access to the verify endpoint.
type sessionClaims struct {
	RequiresTwoFactor bool `json:"twoFactor,omitempty"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret     string        // Secret key for signing session tokens.
	sessionTTL time.Duration // Time-to-live for full session tokens.
	pendingTTL time.Duration // Time-to-live for pending-2FA tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &jwtService{
		secret:     cfg.SecretKey.Session,
		sessionTTL: cfg.Auth.SessionTTL,
		pendingTTL: cfg.Auth.PendingTTL,
	}, nil
}

// Sign creates a signed session token for the given account. Tokens issued
// with requiresTwoFactor set use the shorter pending TTL.
func (s *jwtService) Sign(accountID uuid.UUID, requiresTwoFactor bool) (string, error) {
	ttl := s.sessionTTL
	if requiresTwoFactor {
		ttl = s.pendingTTL
	}

	now := time.Now()
	claims := sessionClaims{
		RequiresTwoFactor: requiresTwoFactor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses and validates a token string, returning the session claims.
// Failures are mapped onto the domain sentinel errors so callers never see
// library-level error types.
func (s *jwtService) Verify(tokenString string) (*service.SessionClaims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, service.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, service.ErrTokenSignature
		default:
			return nil, service.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, service.ErrTokenMalformed
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, service.ErrTokenMalformed
	}

	return &service.SessionClaims{
		AccountID:         accountID,
		RequiresTwoFactor: claims.RequiresTwoFactor,
		ExpiresAt:         claims.ExpiresAt.Time,
	}, nil
}

// SessionTTL returns the configured lifetime of full session tokens.
func (s *jwtService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// PendingTTL returns the configured lifetime of pending-2FA tokens.
func (s *jwtService) PendingTTL() time.Duration {
	return s.pendingTTL
}
