// Package handler contains the HTTP handlers for the application.
package handler

import (
	"encoding/base64"
	"net/http"

	"aimpact/config"
	"aimpact/internal/delivery/http/middleware"
	"aimpact/internal/delivery/http/response"
	"aimpact/internal/domain/service"
	"aimpact/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc           usecase.AuthUsecase
	tokenSvc     service.TokenService
	cookieSecure bool
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, tokenSvc service.TokenService, cfg *config.Config) *AuthHandler {
	cookieSecure := false
	if cfg != nil && cfg.Auth != nil {
		cookieSecure = cfg.Auth.CookieSecure
	}

	return &AuthHandler{
		uc:           uc,
		tokenSvc:     tokenSvc,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyTwoFactorRequest struct {
	TwoFactorCode string `json:"twoFactorCode" validate:"required,len=6"`
}

// Register handles the account registration request. The new account is
// signed in immediately via the session cookie.
func (h *AuthHandler) Register(c echo.Context) error {
	var input registerRequest
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, "Email and password are required")
	}

	output, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.Token, h.tokenSvc.SessionTTL().Seconds())

	return response.Message(c, http.StatusCreated, "Registration successful")
}

// Login handles the login request. Accounts with two-factor enabled receive
// a short-lived pending cookie and must follow up on the verification route.
func (h *AuthHandler) Login(c echo.Context) error {
	var input loginRequest
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, "Email and password are required")
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if output.RequiresTwoFactor {
		h.setSessionCookie(c, output.Token, h.tokenSvc.PendingTTL().Seconds())

		return response.OK(c, map[string]bool{"requiresTwoFactor": true})
	}

	h.setSessionCookie(c, output.Token, h.tokenSvc.SessionTTL().Seconds())

	return response.Message(c, http.StatusOK, "Login successful")
}

// SetupTwoFactor generates and stores a fresh TOTP secret for the
// authenticated account and returns the enrollment material.
func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	output, err := h.uc.SetupTwoFactor(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, map[string]string{
		"qrCode":      output.ProvisioningURI,
		"qrCodeImage": "data:image/png;base64," + base64.StdEncoding.EncodeToString(output.QRCodePNG),
	})
}

// TwoFactorQR serves the enrollment QR code as a PNG, rebuilt from the
// account's stored secret.
func (h *AuthHandler) TwoFactorQR(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	qrPNG, err := h.uc.TwoFactorQR(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", qrPNG)
}

// VerifyTwoFactor checks the submitted TOTP code and upgrades the pending
// session to a full one.
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	var input verifyTwoFactorRequest
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "Invalid verification input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, "2FA code must be 6 digits")
	}

	output, err := h.uc.VerifyTwoFactor(c.Request().Context(), usecase.VerifyTwoFactorInput{
		AccountID: accountID,
		Code:      input.TwoFactorCode,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.Token, h.tokenSvc.SessionTTL().Seconds())

	return response.Message(c, http.StatusOK, "2FA verified")
}

// GetProfile returns the authenticated account's profile.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	accountID, ok := c.Get(middleware.KeyAccountID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "Invalid token")
	}

	account, err := h.uc.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, map[string]any{
		"message":            "User profile",
		"userId":             account.ID,
		"email":              account.Email,
		"isTwoFactorEnabled": account.IsTwoFactorEnabled,
	})
}

// setSessionCookie attaches the session token as an HttpOnly cookie.
func (h *AuthHandler) setSessionCookie(c echo.Context, token string, maxAgeSeconds float64) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAgeSeconds),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
