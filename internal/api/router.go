package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/helpdesk/helpdesk-api/internal/api/handler"
	"github.com/helpdesk/helpdesk-api/internal/api/middleware"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

// Version is reported by the welcome route.
const Version = "1.0.0"

// Deps carries everything NewRouter wires into the routes.
type Deps struct {
	Auth  ports.AuthService
	Users ports.UserService
	Teams ports.TeamService

	Tokens     ports.TokenVerifier
	Identities middleware.IdentityResolver

	Log zerolog.Logger
	// Debug exposes the cause of server errors in responses.
	Debug bool

	// MetricsRegisterer and MetricsGatherer back /metrics. A nil
	// Registerer disables request metrics and the endpoint.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer

	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.PingFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Debug)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	if d.MetricsRegisterer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "helpdesk",
			Subsystem:  "http",
			Registerer: d.MetricsRegisterer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.MetricsGatherer,
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	teamHandler := handler.NewTeamHandler(d.Teams)

	authenticate := middleware.Authenticate(d.Tokens, d.Identities)
	adminOnly := middleware.AdminOnly()

	// --- Public routes ---
	e.GET("/", handler.Welcome(Version))
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, middleware.OptionalAuthenticate(d.Tokens, d.Identities))
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authenticate)

	// --- User routes ---
	users := api.Group("/users", authenticate)
	users.GET("", userHandler.List, adminOnly)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update) // self-or-admin, checked by the service
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Team routes ---
	teams := api.Group("/teams", authenticate)
	teams.GET("", teamHandler.List)
	teams.GET("/:id", teamHandler.Get)
	teams.POST("", teamHandler.Create, adminOnly)
	teams.PUT("/:id", teamHandler.Update, adminOnly)
	teams.DELETE("/:id", teamHandler.Delete, adminOnly)

	return e
}
