package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/careline/homecare-portal/internal/api/docs"
	"github.com/careline/homecare-portal/internal/api/handler"
	"github.com/careline/homecare-portal/internal/api/middleware"
	"github.com/careline/homecare-portal/internal/core/ports"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Session       ports.SessionService
	Guard         ports.RouteGuard
	Notifications ports.NotificationService
	// Probes are pinged by the readiness endpoint, keyed by dependency name.
	Probes map[string]handler.Pinger
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// HTTP metrics go to a per-router registry; /metrics serves it together
	// with the domain metrics on the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "careportal",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(d.Session))

	// --- Dependencies ---
	sessionHandler := handler.NewSessionHandler(d.Session)
	routeHandler := handler.NewRouteHandler(d.Guard, d.Session)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	pageHandler := handler.NewPageHandler()

	// --- Session routes ---
	sess := e.Group("/api/session")
	sess.GET("", sessionHandler.Get)
	sess.DELETE("", sessionHandler.Logout)
	sess.POST("/login", sessionHandler.Login)
	sess.POST("/register", sessionHandler.Register)
	sess.PATCH("/profile", sessionHandler.UpdateProfile, middleware.RequireSession())

	// --- Route guard introspection ---
	e.GET("/api/routes", routeHandler.List)
	e.GET("/api/routes/decision", routeHandler.Decision)

	// --- Notification routes (session required) ---
	notif := e.Group("/api/notifications", middleware.RequireSession())
	notif.GET("", notificationHandler.List)
	notif.POST("/read-all", notificationHandler.MarkAllRead)
	notif.POST("/:id/read", notificationHandler.MarkRead)
	notif.DELETE("/:id", notificationHandler.Delete)

	// --- Pages ---
	e.GET("/auth", pageHandler.Entry)
	for _, decl := range d.Guard.Routes() {
		e.GET(decl.Path, pageHandler.Render, middleware.Guard(d.Guard, decl))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Probes)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

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
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
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
