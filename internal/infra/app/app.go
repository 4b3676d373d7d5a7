package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/infra/config"
	"github.com/udaykiran8062/schoolManagement/internal/infra/database"
	infraredis "github.com/udaykiran8062/schoolManagement/internal/infra/redis"
	"github.com/udaykiran8062/schoolManagement/internal/infra/security"
	"github.com/udaykiran8062/schoolManagement/internal/repository/postgres"
	redisrepo "github.com/udaykiran8062/schoolManagement/internal/repository/redis"
	"github.com/udaykiran8062/schoolManagement/internal/transport/http/handlers"
	"github.com/udaykiran8062/schoolManagement/internal/transport/http/routes"
	"github.com/udaykiran8062/schoolManagement/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

// App wires dependencies and owns the HTTP server lifecycle.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	pool   *pgxpool.Pool
	redis  *infraredis.Client
	server *http.Server
}

// New constructs the full dependency graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig, lg *zap.Logger) (*App, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, lg)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := infraredis.NewClient(cfg.Redis, lg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	codec, err := security.NewTokenCodec(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.App.Name,
	)
	if err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	rateLimiter := redisrepo.NewRateLimitRepository(redisClient.Client(), "ratelimit", cfg.RateLimit.WindowDuration*2)

	authService := usecase.NewAuthService(repos.Users, repos.Sessions, codec, lg)
	registrationService := usecase.NewRegistrationService(repos.Users, security.DefaultPasswordValidator(), lg)

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": handlers.PingerFunc(pool.Ping),
		"redis":    handlers.PingerFunc(redisClient.HealthCheck),
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := routes.New(routes.Dependencies{
		Config:       cfg,
		Logger:       lg,
		Auth:         authService,
		Registration: registrationService,
		Codec:        codec,
		Users:        repos.Users,
		RateLimiter:  rateLimiter,
		Health:       health,
		Registry:     registry,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:    cfg,
		logger: lg,
		pool:   pool,
		redis:  redisClient,
		server: server,
	}, nil
}

// Run serves until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.close()
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.close()
	return nil
}

func (a *App) close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	a.pool.Close()
}
