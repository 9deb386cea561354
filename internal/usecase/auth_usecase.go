// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"aimpact/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string
	Password string
}

// VerifyTwoFactorInput defines the data required to complete a two-factor login.
type VerifyTwoFactorInput struct {
	AccountID uuid.UUID
	Code      string
}

// --- Output DTOs ---

// RegisterOutput returns the new account and its first session token.
type RegisterOutput struct {
	Token   string
	Account *entity.Account
}

// LoginOutput returns the signed session token after a successful password
// check. When the account has two-factor enabled, Token is a short-lived
// pending token and RequiresTwoFactor is set.
type LoginOutput struct {
	Token             string
	RequiresTwoFactor bool
	Account           *entity.Account
}

// TwoFactorSetupOutput returns the enrollment material for a new two-factor secret.
type TwoFactorSetupOutput struct {
	Secret          string
	ProvisioningURI string
	QRCodePNG       []byte
}

// VerifyTwoFactorOutput returns the full session token issued after a valid code.
type VerifyTwoFactorOutput struct {
	Token   string
	Account *entity.Account
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	SetupTwoFactor(ctx context.Context, accountID uuid.UUID) (*TwoFactorSetupOutput, error)

	// TwoFactorQR re-renders the enrollment QR for an account that already
	// has two-factor set up.
	TwoFactorQR(ctx context.Context, accountID uuid.UUID) ([]byte, error)
	VerifyTwoFactor(ctx context.Context, input VerifyTwoFactorInput) (*VerifyTwoFactorOutput, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error)
}
