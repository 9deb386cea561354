// Package errors defines the application error taxonomy. Every error the
// delivery layer can surface to a client is an AppError carrying its HTTP
// status, a stable business code and the exact client-facing message.
package errors

import (
	"net/http"

	"aimpact/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types. Messages are part of the wire contract; clients
// match on them.
var (
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Invalid request",
		"",
	)

	ErrInvalidEmail = NewBaseError(
		http.StatusBadRequest,
		"INVALID_EMAIL",
		"Invalid email",
		"",
	)

	ErrPasswordTooShort = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_TOO_SHORT",
		"Password must be at least 6 characters long",
		"",
	)

	ErrAccountAlreadyExists = NewBaseError(
		http.StatusBadRequest,
		"ACCOUNT_ALREADY_EXISTS",
		"User already exists",
		"",
	)

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases must stay indistinguishable in status and message.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid credentials",
		"",
	)

	ErrTwoFactorRequired = NewBaseError(
		http.StatusUnauthorized,
		"TWO_FACTOR_REQUIRED",
		"2FA required",
		"",
	)

	ErrTwoFactorNotEnabled = NewBaseError(
		http.StatusBadRequest,
		"TWO_FACTOR_NOT_ENABLED",
		"2FA not enabled",
		"",
	)

	ErrInvalidTwoFactorCode = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TWO_FACTOR_CODE",
		"Invalid 2FA code",
		"",
	)

	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"User not found",
		"",
	)

	// ErrInvalidToken is the single surface for expired, forged and
	// malformed tokens alike.
	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"Invalid token",
		"",
	)

	ErrNoToken = NewBaseError(
		http.StatusUnauthorized,
		"NO_TOKEN",
		"No token provided",
		"",
	)

	ErrTransactionRecordFailed = NewBaseError(
		http.StatusBadRequest,
		"TRANSACTION_RECORD_FAILED",
		"Failed to record transaction",
		"",
	)
)

// NewDatabaseExecuteError wraps an unexpected storage failure. The client
// sees only a generic 500; the cause stays in the details for server logs.
func NewDatabaseExecuteError(cause error, message string) *BaseError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}

	return NewBaseError(
		http.StatusInternalServerError,
		"DATABASE_ERROR",
		"Internal server error",
		message+": "+details,
	)
}
