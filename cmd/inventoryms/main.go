package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/app"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/auth"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/inventory"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/products"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/masterdata/storages"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/observability"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/cache"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/platform/db"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/rbac"
	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
	"github.com/LifeIsPranav/InventoryMS-BE/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, db.PoolConfig{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns, MaxConnLifetime: cfg.PGConnLifetime})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(redisClient)
	tokens := shared.NewTokenStore(redisClient, "inventoryms_session", cfg.TokenTTL)

	rbacService := rbac.NewService(nil)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool), tokens)
	authenticated := app.Authenticate(authService, logger)

	productService := products.NewService(products.NewRepository(pool), auditLogger, idempotency, logger)
	storageService := storages.NewService(storages.NewRepository(pool), auditLogger, logger)
	inventoryService := inventory.NewService(inventory.NewRepository(pool), inventory.ServiceConfig{
		Audit:    auditLogger,
		Recorder: metrics,
		Logger:   logger,
	})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Authenticator:      authenticated,
		AuthHandler:        auth.NewHandler(logger, authService),
		PermissionsHandler: rbac.NewPermissionsHandler(rbacService),
		ProductsHandler:    products.NewHandler(logger, productService, rbacMiddleware),
		StoragesHandler:    storages.NewHandler(logger, storageService, rbacMiddleware),
		InventoryHandler:   inventory.NewHandler(logger, inventoryService, rbacMiddleware),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
		HealthChecks: map[string]app.HealthCheck{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
