package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/infra/config"
	"github.com/udaykiran8062/schoolManagement/internal/infra/security"
	"github.com/udaykiran8062/schoolManagement/internal/transport/http/handlers"
	"github.com/udaykiran8062/schoolManagement/internal/transport/http/middleware"
	"github.com/udaykiran8062/schoolManagement/internal/usecase"
)

// Dependencies collects everything the router needs.
type Dependencies struct {
	Config       *config.AppConfig
	Logger       *zap.Logger
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Codec        *security.TokenCodec
	Users        port.UserRepository
	RateLimiter  port.RateLimitStore
	Health       *handlers.HealthHandler
	Registry     *prometheus.Registry
}

// New assembles the gin engine with the full middleware chain and all
// route groups.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewHTTPMetrics(registry)

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(deps.Logger),
		middleware.SecureHeaders(),
		middleware.CORS(deps.Config.CORS),
		metrics.Handler(),
	)

	engine.GET("/healthz", deps.Health.Live)
	engine.GET("/readyz", deps.Health.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	cookies := middleware.NewCookiePolicy(deps.Config.App, deps.Config.JWT)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Registration, cookies, deps.Logger)
	adminUsers := handlers.NewAdminUsersHandler(deps.Users, deps.Logger)

	v1 := engine.Group("/v1")
	if deps.RateLimiter != nil {
		v1.Use(middleware.RateLimit(deps.RateLimiter, deps.Config.RateLimit, deps.Logger))
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/test", authHandler.Test)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.Authenticate(deps.Auth, deps.Codec, cookies))
	{
		admin.GET("/users", adminUsers.List)
	}

	return engine
}
