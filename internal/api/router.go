package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clientespro/client-manager/docs"
	"github.com/clientespro/client-manager/internal/api/handler"
	"github.com/clientespro/client-manager/internal/api/middleware"
	"github.com/clientespro/client-manager/internal/core/domain"
	"github.com/clientespro/client-manager/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth    ports.AuthService
	Clients ports.ClientService
	Admin   ports.AdminService
	Stats   ports.StatsService
	Gate    *middleware.Gate

	// Readiness dependencies by name, e.g. "mongodb" and "redis".
	Pingers map[string]handler.Pinger

	Log              zerolog.Logger
	ExposeResetToken bool
	// EnableMetrics installs the Prometheus middleware and /metrics. The
	// collectors register globally, so only one router per process may enable it.
	EnableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORS())
	if d.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("crm"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	authHandler := handler.NewAuthHandler(d.Auth, d.ExposeResetToken)
	clientHandler := handler.NewClientHandler(d.Clients)
	adminHandler := handler.NewAdminHandler(d.Admin, d.Clients, d.Stats)
	healthHandler := handler.NewHealthHandler(d.Pingers)

	signedIn := d.Gate.Protect(domain.RoleUser, domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me, signedIn...)
	auth.PUT("/profile", authHandler.UpdateProfile, signedIn...)
	auth.PUT("/password", authHandler.ChangePassword, signedIn...)
	auth.POST("/logout", authHandler.Logout, signedIn...)
	auth.DELETE("/account", authHandler.Deactivate, signedIn...)

	// --- Client routes ---
	clients := e.Group("/clients", signedIn...)
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/stats", clientHandler.Stats)
	clients.GET("/follow-up", clientHandler.FollowUps)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.PUT("/:id/contact", clientHandler.TouchContact)
	clients.DELETE("/:id", clientHandler.Delete, middleware.Authorize(domain.RoleAdmin))

	// --- Admin routes ---
	admin := e.Group("/admin", d.Gate.Protect(domain.RoleAdmin)...)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.PUT("/users/:id/role", adminHandler.UpdateRole)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/clients", adminHandler.ListClients)
	admin.GET("/stats/clients", adminHandler.ClientStats)
	admin.GET("/stats/users", adminHandler.UserStats)

	// --- Health probes and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // are dependencies up?
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
