package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hotelmend/ticket-service/internal/api/http"
	"github.com/hotelmend/ticket-service/internal/api/http/handlers"
	"github.com/hotelmend/ticket-service/internal/app"
	"github.com/hotelmend/ticket-service/internal/auth"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start services", zap.Error(err))
	}
	defer container.Close()

	if cfg.Seed.Enabled {
		if err := container.SeedDefaults(ctx); err != nil {
			logger.Fatal("failed to seed reference lists", zap.Error(err))
		}
	}

	server := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(server, logger, container.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			container.Backends.Checks(), container.Access.ConfigProblems),
		Auth:           handlers.NewAuthHandler(container.Access),
		Tickets:        handlers.NewTicketsHandler(container.Engine, container.Suggester),
		References:     handlers.NewReferencesHandler(container.Locations, container.RepairTypes),
		Admin:          handlers.NewAdminHandler(container.Access, container.Activity),
		AuthMiddleware: auth.NewAuthMiddleware(container.Tokens),
		Metrics:        container.Metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
