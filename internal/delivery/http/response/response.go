// Package response writes the API's wire shapes. The payloads are flat JSON
// objects; clients key on the "message" field for errors and confirmations.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MessageBody is the {"message": ...} confirmation payload.
type MessageBody struct {
	Message string `json:"message"`
}

// Message writes a flat {"message": ...} body with the given status.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageBody{Message: message})
}

// OK writes an arbitrary payload with status 200.
func OK(c echo.Context, body any) error {
	return c.JSON(http.StatusOK, body)
}

// Created writes an arbitrary payload with status 201.
func Created(c echo.Context, body any) error {
	return c.JSON(http.StatusCreated, body)
}

// Error writes a flat {"message": ...} error body with the given status.
func Error(c echo.Context, statusCode int, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, MessageBody{Message: message})
}

// Unauthorized 401 error
func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}

// BadRequest 400 error
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}
