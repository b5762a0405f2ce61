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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pennyledger/pennyledger/internal/app"
	"github.com/pennyledger/pennyledger/internal/auth"
	"github.com/pennyledger/pennyledger/internal/catalog"
	"github.com/pennyledger/pennyledger/internal/observability"
	"github.com/pennyledger/pennyledger/internal/platform/db"
	"github.com/pennyledger/pennyledger/internal/shared"
	"github.com/pennyledger/pennyledger/internal/spending/categories"
	"github.com/pennyledger/pennyledger/internal/spending/expenses"
	"github.com/pennyledger/pennyledger/internal/spending/records"
	"github.com/pennyledger/pennyledger/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.MigrationsDir, cfg.PGDSN); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token service", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, metrics)
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo, auditLogger)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	expensesRepo := expenses.NewRepository(pool)
	expensesService := expenses.NewService(expensesRepo, categoriesService, auditLogger)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	recordsRepo := records.NewRepository(pool)
	recordsService := records.NewService(recordsRepo, catalogService, categoriesService, expensesService, auditLogger)
	recordsHandler := records.NewHandler(logger, recordsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	// Best-effort warmup at boot so the first catalog hit is served hot.
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err == nil {
		if _, err := jobClient.EnqueueCatalogWarmup(ctx, jobs.CatalogWarmupPayload{}); err != nil {
			logger.Warn("enqueue catalog warmup", slog.Any("error", err))
		}
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
	}

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		AuthHandler:           authHandler,
		AuthMiddleware:        authMiddleware,
		CatalogHandler:        catalogHandler,
		UserCategoriesHandler: categoriesHandler,
		UserExpensesHandler:   expensesHandler,
		RecordsHandler:        recordsHandler,
		JobHandler:            jobHandler,
		Metrics:               metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
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
