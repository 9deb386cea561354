// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"aimpact/internal/delivery/http/middleware"
	"aimpact/internal/delivery/http/router/handler"
	"aimpact/internal/delivery/ws"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	TransactionHandler *handler.TransactionHandler
	AuthMiddleware     *middleware.AuthMiddleware
	Hub                *ws.Hub
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	transactionHandler *handler.TransactionHandler
	authMiddleware     *middleware.AuthMiddleware
	hub                *ws.Hub
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		transactionHandler: params.TransactionHandler,
		authMiddleware:     params.AuthMiddleware,
		hub:                params.Hub,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoints
	e.GET("/health", handler.HealthCheck)
	e.GET("/api/v1/health", handler.HealthCheck)

	// WebSocket endpoint for transaction updates
	e.GET("/ws", r.hub.HandleWS)

	api := e.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/setup-2fa", r.authHandler.SetupTwoFactor, r.authMiddleware.Authenticate)
		authGroup.GET("/2fa/qr", r.authHandler.TwoFactorQR, r.authMiddleware.Authenticate)
		// Verification is the one route a pending two-factor session may reach.
		authGroup.POST("/verify-2fa", r.authHandler.VerifyTwoFactor, r.authMiddleware.AuthenticatePending)
	}

	// User routes that require authentication
	userGroup := api.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.authHandler.GetProfile)
	}

	// Transaction routes that require authentication
	txGroup := api.Group("/transactions")
	txGroup.Use(r.authMiddleware.Authenticate)
	{
		txGroup.POST("", r.transactionHandler.Record)
		txGroup.GET("", r.transactionHandler.List)
		txGroup.GET("/export", r.transactionHandler.Export)
	}
}
