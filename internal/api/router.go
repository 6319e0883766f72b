package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tokengate/rbac-api/internal/api/handler"
	"github.com/tokengate/rbac-api/internal/api/middleware"
	"github.com/tokengate/rbac-api/internal/core/ports"

	_ "github.com/tokengate/rbac-api/docs"
)

const (
	metricsNamespace = "rbac"
	metricsSubsystem = "http"
)

// Deps carries everything the router needs. Registerer and Gatherer default
// to the global Prometheus registry when nil.
type Deps struct {
	Auth     ports.AuthService
	Profile  ports.ProfileService
	Identity ports.IdentityResolver
	Access   ports.AccessEvaluator
	Admin    ports.AdminService

	// SessionHeader is the request header carrying the session token.
	SessionHeader string
	// Health lists the dependencies pinged by the readiness probe.
	Health map[string]handler.Pinger

	Log        zerolog.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.SessionHeader == "" {
		d.SessionHeader = "X-Session-Token"
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.JSONSerializer = handler.StrictJSONSerializer{}
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Subsystem:  metricsSubsystem,
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authenticated := middleware.Authenticate(d.Identity, d.SessionHeader)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout, authenticated)

	// --- Self-service ---
	userHandler := handler.NewUserHandler(d.Profile)
	user := e.Group("/user", authenticated)
	user.GET("/me", userHandler.Me)
	user.PUT("/update", userHandler.Update)
	user.DELETE("/delete", userHandler.Delete)

	// --- Administration (admin role checked by the service) ---
	adminHandler := handler.NewAdminHandler(d.Admin)
	admin := e.Group("/admin", authenticated)
	admin.POST("/role", adminHandler.CreateRole)
	admin.POST("/permission", adminHandler.CreatePermission)
	admin.DELETE("/permission/:id", adminHandler.DeletePermission)
	admin.PUT("/user/role", adminHandler.ChangeUserRole)
	admin.GET("/users", adminHandler.ListUsers)

	// --- Permission-guarded resources ---
	itemsHandler := handler.NewItemsHandler()
	items := e.Group("/items", authenticated)
	items.GET("", itemsHandler.List, middleware.RequirePermission(d.Access, "items", "read"))
	items.POST("", itemsHandler.Create, middleware.RequirePermission(d.Access, "items", "write"))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			var ev *zerolog.Event
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			default:
				ev = log.Info()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
