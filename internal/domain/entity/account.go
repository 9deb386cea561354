// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the core identity entity: one email-addressed credential record.
// PasswordHash stores the bcrypt hash; the plaintext password is never kept.
type Account struct {
	ID                 uuid.UUID // The unique identifier for the account, assigned at creation.
	Email              string    // The login identifier; uniqueness is enforced by the store.
	PasswordHash       string    // bcrypt hash of the account password.
	TwoFactorSecret    string    // base32 TOTP shared secret; empty until two-factor setup.
	IsTwoFactorEnabled bool      // True once two-factor setup has stored a secret.
	CreatedAt          time.Time // Timestamp of when this account was created.
	UpdatedAt          time.Time // Timestamp of the last modification.
}
