package impl

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"aimpact/config"
	domainerrors "aimpact/internal/domain/errors"
	"aimpact/internal/domain/repository"
	"aimpact/internal/domain/service"
	"aimpact/internal/errors"
	"aimpact/internal/infra/auth"
	"aimpact/internal/infra/persistence/memory"
	"aimpact/internal/infra/qrcode"
	"aimpact/internal/usecase"
)

type authFixture struct {
	service  usecase.AuthUsecase
	accounts *memory.AccountRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	return newAuthFixtureWith(t, func(params *AuthServiceParams) {})
}

// newAuthFixtureWith lets a test swap individual dependencies before the
// service is constructed.
func newAuthFixtureWith(t *testing.T, customize func(*AuthServiceParams)) *authFixture {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			MinPasswordLength: 6,
			SessionTTL:        time.Hour,
			PendingTTL:        5 * time.Minute,
		},
		TOTP:   &config.TOTPConfig{Issuer: "AimCrypto"},
		QRCode: &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "M"},
	}
	cfg.SecretKey.Session = "test_session_secret_key_very_long_for_testing"

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	accounts := memory.NewAccountRepository()
	transactions := memory.NewTransactionRepository()

	params := AuthServiceParams{
		TxManager:     memory.NewTransactionManager(accounts, transactions),
		AccountRepo:   accounts,
		Hasher:        auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		TokenService:  tokenService,
		TOTPService:   auth.NewTOTPService(cfg),
		QRCodeService: qrcode.NewQRCodeService(cfg),
		Config:        cfg,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	customize(&params)

	return &authFixture{service: NewAuthService(params), accounts: accounts}
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	out, err := f.service.Register(ctx, usecase.RegisterInput{
		Email:    "user@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.NotEqual(t, uuid.Nil, out.Account.ID)
	assert.Equal(t, "user@example.com", out.Account.Email)

	// The password is stored only as a hash.
	assert.NotEmpty(t, out.Account.PasswordHash)
	assert.NotEqual(t, "secret1", out.Account.PasswordHash)
	assert.False(t, out.Account.IsTwoFactorEnabled)
}

func TestAuthService_Register_InvalidEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for _, email := range []string{"", "plain", "no@tld", "two@@example.com", "spaces in@example.com"} {
		_, err := f.service.Register(ctx, usecase.RegisterInput{Email: email, Password: "secret1"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidEmail, "email: %q", email)
	}
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(context.Background(), usecase.RegisterInput{
		Email:    "user@example.com",
		Password: "12345",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordTooShort)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "other-secret"})
	assert.ErrorIs(t, err, domainerrors.ErrAccountAlreadyExists)
}

// trackingTxManager flags while a transaction callback is on the stack.
type trackingTxManager struct {
	repository.TransactionManager

	inTx bool
}

func (m *trackingTxManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	m.inTx = true
	defer func() { m.inTx = false }()

	return m.TransactionManager.Execute(ctx, fn)
}

// observingTokenService records whether Sign ran inside a transaction and
// can be made to fail.
type observingTokenService struct {
	service.TokenService

	tx         *trackingTxManager
	signErr    error
	signedInTx bool
}

func (s *observingTokenService) Sign(accountID uuid.UUID, requiresTwoFactor bool) (string, error) {
	s.signedInTx = s.tx.inTx
	if s.signErr != nil {
		return "", s.signErr
	}

	return s.TokenService.Sign(accountID, requiresTwoFactor)
}

func TestAuthService_Register_SignsWithinTransaction(t *testing.T) {
	var tokens *observingTokenService
	f := newAuthFixtureWith(t, func(params *AuthServiceParams) {
		tx := &trackingTxManager{TransactionManager: params.TxManager}
		tokens = &observingTokenService{TokenService: params.TokenService, tx: tx}
		params.TxManager = tx
		params.TokenService = tokens
	})

	_, err := f.service.Register(context.Background(), usecase.RegisterInput{
		Email:    "user@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	// The token is minted before commit, so a signing failure aborts the
	// whole registration instead of leaving an account row behind.
	assert.True(t, tokens.signedInTx)
}

func TestAuthService_Register_SignFailure(t *testing.T) {
	f := newAuthFixtureWith(t, func(params *AuthServiceParams) {
		tx := &trackingTxManager{TransactionManager: params.TxManager}
		params.TxManager = tx
		params.TokenService = &observingTokenService{
			TokenService: params.TokenService,
			tx:           tx,
			signErr:      errors.New("signing backend unavailable"),
		}
	})

	_, err := f.service.Register(context.Background(), usecase.RegisterInput{
		Email:    "user@example.com",
		Password: "secret1",
	})
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	out, err := f.service.Login(ctx, usecase.LoginInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.False(t, out.RequiresTwoFactor)
	assert.Equal(t, registered.Account.ID, out.Account.ID)
}

// countingHasher tallies Check calls on top of a real hasher.
type countingHasher struct {
	service.PasswordHasher

	mu     sync.Mutex
	checks int
}

func (h *countingHasher) Check(password, hash string) bool {
	h.mu.Lock()
	h.checks++
	h.mu.Unlock()

	return h.PasswordHasher.Check(password, hash)
}

func (h *countingHasher) checkCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.checks
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasherWithCost(bcrypt.MinCost)}
	f := newAuthFixtureWith(t, func(params *AuthServiceParams) {
		params.Hasher = hasher
	})
	ctx := context.Background()

	_, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, unknownErr := f.service.Login(ctx, usecase.LoginInput{Email: "ghost@example.com", Password: "secret1"})
	unknownChecks := hasher.checkCalls()
	_, wrongErr := f.service.Login(ctx, usecase.LoginInput{Email: "user@example.com", Password: "wrong"})
	wrongChecks := hasher.checkCalls() - unknownChecks

	assert.ErrorIs(t, unknownErr, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	// Both failure paths cost exactly one bcrypt comparison, so an unknown
	// email cannot be told apart by response time.
	assert.Equal(t, 1, unknownChecks)
	assert.Equal(t, 1, wrongChecks)
}

func TestAuthService_SetupTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account

	setup, err := f.service.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.Contains(t, setup.ProvisioningURI, "user@example.com")
	assert.NotEmpty(t, setup.QRCodePNG)

	// Two-factor is active as soon as setup completes; the next login only
	// yields a pending token.
	stored, err := f.accounts.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsTwoFactorEnabled)
	assert.Equal(t, setup.Secret, stored.TwoFactorSecret)

	out, err := f.service.Login(ctx, usecase.LoginInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, out.RequiresTwoFactor)
	assert.NotEmpty(t, out.Token)
}

func TestAuthService_SetupTwoFactor_ReplacesSecret(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account

	first, err := f.service.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)
	second, err := f.service.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)

	stored, err := f.accounts.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Secret, stored.TwoFactorSecret)
}

func TestAuthService_TwoFactorQR(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account

	// No QR exists before enrollment.
	_, err = f.service.TwoFactorQR(ctx, account.ID)
	assert.ErrorIs(t, err, domainerrors.ErrTwoFactorNotEnabled)

	_, err = f.service.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)

	qrPNG, err := f.service.TwoFactorQR(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(qrPNG, []byte("\x89PNG\r\n\x1a\n")))
}

func TestAuthService_SetupTwoFactor_UnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.SetupTwoFactor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}

func TestAuthService_VerifyTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account
	setup, err := f.service.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)

	code, err := totp.GenerateCodeCustom(setup.Secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	out, err := f.service.VerifyTwoFactor(ctx, usecase.VerifyTwoFactorInput{AccountID: account.ID, Code: code})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, account.ID, out.Account.ID)
}

func TestAuthService_VerifyTwoFactor_InvalidCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account
	_, err = f.service.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)

	_, err = f.service.VerifyTwoFactor(ctx, usecase.VerifyTwoFactorInput{AccountID: account.ID, Code: "000000"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTwoFactorCode)
}

func TestAuthService_VerifyTwoFactor_NotEnabled(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account

	_, err = f.service.VerifyTwoFactor(ctx, usecase.VerifyTwoFactorInput{AccountID: account.ID, Code: "123456"})
	assert.ErrorIs(t, err, domainerrors.ErrTwoFactorNotEnabled)
}

func TestAuthService_GetProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, usecase.RegisterInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)
	account := registered.Account

	profile, err := f.service.GetProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, profile.Email)

	_, err = f.service.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
}
