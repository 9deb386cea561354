// Package middleware contains the HTTP middleware for the echo server.
package middleware

import (
	"strings"

	deliverycontext "aimpact/internal/delivery/context"
	"aimpact/internal/delivery/http/response"
	"aimpact/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "token"

// KeyAccountID is the echo.Context key for the authenticated account ID.
const KeyAccountID = "accountID"

// AuthMiddleware validates session tokens on protected routes. It accepts the
// token from the session cookie or, failing that, an Authorization Bearer
// header.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates a full session token. Pending two-factor tokens are
// rejected; their only valid destination is the verification endpoint.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return m.authenticate(next, false)
}

// AuthenticatePending validates a session token but also admits pending
// two-factor tokens. Used only by the two-factor verification route.
func (m *AuthMiddleware) AuthenticatePending(next echo.HandlerFunc) echo.HandlerFunc {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next echo.HandlerFunc, allowPending bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return response.Unauthorized(c, "No token provided")
		}

		claims, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			// Expired, forged and malformed all collapse into one message;
			// an attacker learns nothing about why the token failed.
			return response.Unauthorized(c, "Invalid token")
		}

		if claims.RequiresTwoFactor && !allowPending {
			return response.Unauthorized(c, "2FA required")
		}

		// Set the account on both contexts: echo for handlers, request
		// context for the use case layer.
		c.Set(KeyAccountID, claims.AccountID)
		ctx := deliverycontext.WithAccountID(c.Request().Context(), claims.AccountID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// extractToken pulls the session token from the cookie, falling back to the
// Authorization header.
func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return strings.TrimSpace(token)
	}

	return ""
}
