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

	"github.com/campushq/campus-console/internal/app"
	"github.com/campushq/campus-console/internal/audit"
	"github.com/campushq/campus-console/internal/catalog"
	"github.com/campushq/campus-console/internal/grants"
	"github.com/campushq/campus-console/internal/observability"
	"github.com/campushq/campus-console/internal/plans"
	"github.com/campushq/campus-console/internal/platform/cache"
	"github.com/campushq/campus-console/internal/platform/db"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/shared"
	"github.com/campushq/campus-console/internal/users"
	"github.com/campushq/campus-console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
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

	userRepo := users.NewRepository(pool)
	profileRepo := profiles.NewRepository(pool)
	profileCache := profiles.NewCache(redisClient, cfg.ProfileCacheTTL)
	profileService := profiles.NewService(profileRepo, userRepo, profileCache)
	userService := users.NewService(userRepo, profileService)

	planRepo := plans.NewRepository(pool)
	planService := plans.NewService(planRepo)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, planService, cfg.CatalogPageSizeMax)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	grantRepo := grants.NewRepository(pool)
	coordinator := grants.NewCoordinator(grantRepo, jobClient, metrics, logger)

	notifier := grants.NewNotifier(redisClient, logger)
	go notifier.Listen(ctx, coordinator)

	auditService := audit.NewService(audit.NewRepository(pool))
	grantService := grants.NewService(coordinator, profileService, catalogService, userRepo, auditLogger, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		UsersHandler:    users.NewHandler(logger, userService),
		ProfilesHandler: profiles.NewHandler(logger, profileService),
		PlansHandler:    plans.NewHandler(logger, planService),
		CatalogHandler:  catalog.NewHandler(logger, catalogService),
		GrantsHandler:   grants.NewHandler(logger, grantService),
		AuditHandler:    audit.NewHandler(logger, auditService),
		JobsHandler:     jobs.NewHandler(inspector, logger),
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
