package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cadastrahub/registry-api/docs"
	"github.com/cadastrahub/registry-api/internal/api/handler"
	"github.com/cadastrahub/registry-api/internal/api/middleware"
	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// Dependencies holds everything the router wires into handlers and gates.
type Dependencies struct {
	Auth     ports.AuthService
	Accounts ports.AccountService
	Lots     ports.LotService
	Tokens   ports.TokenManager
	Roles    ports.RoleResolver

	BootstrapEnabled bool
	BootstrapToken   string
	LoginRateLimit   float64
	LoginRateBurst   int

	Health map[string]handler.PingFunc
	Logger zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil means
	// the default Prometheus registry, where the domain metrics live.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cadastrahub",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	profileHandler := handler.NewProfileHandler(deps.Accounts)
	adminUserHandler := handler.NewAdminUserHandler(deps.Accounts, deps.Lots)
	lotHandler := handler.NewLotHandler(deps.Lots)
	healthHandler := handler.NewHealthHandler(deps.Health)

	userGate := middleware.Auth(deps.Tokens)
	adminGate := middleware.RBAC(deps.Roles, deps.Logger, domain.RoleAdmin)

	// --- Public routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login, middleware.LoginRateLimit(deps.LoginRateLimit, deps.LoginRateBurst))
	e.POST("/admin/register", authHandler.RegisterAdmin,
		middleware.Bootstrap(deps.BootstrapEnabled, deps.BootstrapToken, deps.Logger))

	// --- User-gated routes ---
	e.GET("/profile", profileHandler.Get, userGate)
	e.PUT("/profile", profileHandler.Update, userGate)

	products := e.Group("/products", userGate)
	products.GET("", lotHandler.ListMine)
	products.POST("", lotHandler.Create)
	products.POST("/batch", lotHandler.CreateBatch)
	products.GET("/all", lotHandler.ListAll, adminGate)
	products.GET("/:id", lotHandler.GetMine)
	products.DELETE("/:id", lotHandler.DeleteMine)

	// --- Admin-gated routes ---
	admin := e.Group("/admin", userGate, adminGate)
	admin.GET("/users", adminUserHandler.List)
	admin.GET("/users/:id", adminUserHandler.Get)
	admin.PUT("/users/:id", adminUserHandler.Update)
	admin.DELETE("/users/:id", adminUserHandler.Delete)
	admin.GET("/users/:id/products", adminUserHandler.ListLots)

	admin.GET("/products", lotHandler.ListAll)
	admin.POST("/products", lotHandler.CreateFor)
	admin.GET("/products/:id", lotHandler.Get)
	admin.PUT("/products/:id", lotHandler.Update)
	admin.DELETE("/products/:id", lotHandler.Delete)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one access log line per request through zerolog.
// Headers and bodies are not logged, so credentials never reach the log.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
