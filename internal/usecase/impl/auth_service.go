// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"aimpact/config"
	deliverycontext "aimpact/internal/delivery/context"
	"aimpact/internal/domain/entity"
	domainerrors "aimpact/internal/domain/errors"
	"aimpact/internal/domain/repository"
	"aimpact/internal/domain/service"
	"aimpact/internal/usecase"
)

// emailPattern is deliberately loose; the mailbox provider has the final say.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager         repository.TransactionManager
	accountRepo       repository.AccountRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	totpService       service.TOTPService
	qrcodeService     service.QRCodeService
	minPasswordLength int
	logger            *slog.Logger
	now               func() time.Time

	// fillerHash is compared against when the email is unknown, so that
	// both login failure paths cost one bcrypt comparison.
	fillerHash string
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	AccountRepo   repository.AccountRepository
	Hasher        service.PasswordHasher
	TokenService  service.TokenService
	TOTPService   service.TOTPService
	QRCodeService service.QRCodeService
	Config        *config.Config
	Logger        *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	minPasswordLength := 6
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.MinPasswordLength > 0 {
		minPasswordLength = params.Config.Auth.MinPasswordLength
	}

	// Hash errors only on an out-of-range cost, which the hasher clamps.
	fillerHash, _ := params.Hasher.Hash("login-timing-filler")

	return &authService{
		txManager:         params.TxManager,
		accountRepo:       params.AccountRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		totpService:       params.TOTPService,
		qrcodeService:     params.QRCodeService,
		minPasswordLength: minPasswordLength,
		logger:            params.Logger,
		now:               time.Now,
		fillerHash:        fillerHash,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account from an email and password and signs the
// account in immediately.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := strings.TrimSpace(input.Email)
	if !emailPattern.MatchString(email) {
		return nil, domainerrors.ErrInvalidEmail
	}
	if len(input.Password) < srv.minPasswordLength {
		return nil, domainerrors.ErrPasswordTooShort
	}

	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	account := &entity.Account{
		Email:        email,
		PasswordHash: hashedPassword,
	}

	var token string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		_, findErr := accountRepo.FindByEmail(ctx, email)
		if findErr == nil {
			return domainerrors.ErrAccountAlreadyExists
		}
		if !errors.Is(findErr, repository.ErrAccountNotFound) {
			return errors.Wrap(findErr, "failed to check existing account")
		}

		if createErr := accountRepo.Create(ctx, account); createErr != nil {
			// The unique index is the authority under concurrency; the
			// lookup above only catches the common sequential case.
			if errors.Is(createErr, repository.ErrDuplicateEmail) {
				return domainerrors.ErrAccountAlreadyExists
			}

			return errors.Wrap(createErr, "failed to create account")
		}

		// Sign inside the transaction so a signing failure rolls the
		// account row back; registering is all-or-nothing.
		signed, signErr := srv.tokenService.Sign(account.ID, false)
		if signErr != nil {
			return errors.Wrap(signErr, "failed to sign session token")
		}
		token = signed

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", account.ID))

	return &usecase.RegisterOutput{Token: token, Account: account}, nil
}

// Login checks the credentials and issues a session token. Accounts with
// two-factor enabled get a short-lived pending token instead; the caller must
// follow up with VerifyTwoFactor.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := strings.TrimSpace(input.Email)

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Unknown email and wrong password must stay indistinguishable,
			// through the response time as much as the message. Burn the
			// comparison the wrong-password path would have performed.
			srv.hasher.Check(input.Password, srv.fillerHash)

			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to find account for login")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("accountID", account.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	requiresTwoFactor := account.IsTwoFactorEnabled
	token, err := srv.tokenService.Sign(account.ID, requiresTwoFactor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign session token")
	}

	srv.log(ctx).Info("Login succeeded",
		slog.Any("accountID", account.ID),
		slog.Bool("requiresTwoFactor", requiresTwoFactor),
	)

	return &usecase.LoginOutput{
		Token:             token,
		RequiresTwoFactor: requiresTwoFactor,
		Account:           account,
	}, nil
}

// SetupTwoFactor generates a fresh secret for the account, enables two-factor
// immediately and returns the provisioning material. An account that loses
// its authenticator before scanning can simply run setup again; the new
// secret replaces the old one.
func (srv *authService) SetupTwoFactor(ctx context.Context, accountID uuid.UUID) (*usecase.TwoFactorSetupOutput, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account for two-factor setup")
	}

	enrollment, err := srv.totpService.GenerateSecret(account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate two-factor secret")
	}

	account.TwoFactorSecret = enrollment.Secret
	account.IsTwoFactorEnabled = true
	if err := srv.accountRepo.Update(ctx, account); err != nil {
		return nil, errors.Wrap(err, "failed to store two-factor secret")
	}

	qrPNG, err := srv.qrcodeService.RenderPNG(enrollment.ProvisioningURI)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render enrollment QR code")
	}

	srv.log(ctx).Info("Two-factor enabled", slog.Any("accountID", accountID))

	return &usecase.TwoFactorSetupOutput{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
		QRCodePNG:       qrPNG,
	}, nil
}

// TwoFactorQR re-renders the enrollment QR from the stored secret, for an
// account that wants to re-scan without rotating the secret.
func (srv *authService) TwoFactorQR(ctx context.Context, accountID uuid.UUID) ([]byte, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account for two-factor QR")
	}

	if !account.IsTwoFactorEnabled || account.TwoFactorSecret == "" {
		return nil, domainerrors.ErrTwoFactorNotEnabled
	}

	uri := srv.totpService.ProvisioningURI(account.Email, account.TwoFactorSecret)

	qrPNG, err := srv.qrcodeService.RenderPNG(uri)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render enrollment QR code")
	}

	return qrPNG, nil
}

// VerifyTwoFactor checks a TOTP code and exchanges the pending session for a
// full one.
func (srv *authService) VerifyTwoFactor(ctx context.Context, input usecase.VerifyTwoFactorInput) (*usecase.VerifyTwoFactorOutput, error) {
	account, err := srv.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account for two-factor verification")
	}

	if !account.IsTwoFactorEnabled || account.TwoFactorSecret == "" {
		return nil, domainerrors.ErrTwoFactorNotEnabled
	}

	if !srv.totpService.Verify(account.TwoFactorSecret, input.Code, srv.now()) {
		srv.log(ctx).Warn("Two-factor verification failed", slog.Any("accountID", account.ID))

		return nil, domainerrors.ErrInvalidTwoFactorCode
	}

	token, err := srv.tokenService.Sign(account.ID, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign session token")
	}

	srv.log(ctx).Info("Two-factor verification succeeded", slog.Any("accountID", account.ID))

	return &usecase.VerifyTwoFactorOutput{
		Token:   token,
		Account: account,
	}, nil
}

// GetProfile retrieves the account behind the authenticated session.
func (srv *authService) GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account for profile")
	}

	return account, nil
}
