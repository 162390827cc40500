package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/comandero-software/comandero/internal/api"
	"github.com/comandero-software/comandero/internal/auth"
	"github.com/comandero-software/comandero/internal/config"
	"github.com/comandero-software/comandero/internal/database"
	"github.com/comandero-software/comandero/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env in development; in production the environment is the
	// source of truth and the file simply doesn't exist.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Comandero",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres pool
	pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Redis backs the customer session realm
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Repositories
	staffSessionRepo := repository.NewStaffSessionRepository(pool)

	deps := &api.Dependencies{
		OrderRepo:        repository.NewOrderRepository(pool),
		StaffRepo:        repository.NewStaffRepository(pool),
		CustomerRepo:     repository.NewCustomerRepository(pool),
		StaffSessionRepo: staffSessionRepo,
		RestaurantRepo:   repository.NewRestaurantRepository(pool),
		StaffRealm: auth.NewStaffRealm(
			staffSessionRepo,
			cfg.StaffSessionSecret,
			"comandero",
			cfg.StaffSessionTTL,
		),
		CustomerRealm: auth.NewCustomerRealm(rdb, cfg.CustomerSessionTTL),
		DB:            pool,
		Config:        cfg,
	}

	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
