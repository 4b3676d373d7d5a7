package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/infra/app"
	"github.com/udaykiran8062/schoolManagement/internal/infra/config"
	"github.com/udaykiran8062/schoolManagement/internal/infra/logger"
)

func main() {
	// Optional in containerized deployments where env comes from the
	// orchestrator.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer lg.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("bootstrap failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		lg.Fatal("server exited", zap.Error(err))
	}
}
