package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/campushq/campus-console/internal/app"
	"github.com/campushq/campus-console/internal/grants"
	jobmetrics "github.com/campushq/campus-console/internal/jobs"
	"github.com/campushq/campus-console/internal/platform/cache"
	"github.com/campushq/campus-console/internal/platform/db"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/tenants"
	"github.com/campushq/campus-console/internal/users"
	"github.com/campushq/campus-console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	metrics := jobmetrics.NewMetrics(nil)

	userRepo := users.NewRepository(pool)
	tenantRepo := tenants.NewRepository(pool)
	profileRepo := profiles.NewRepository(pool)
	profileCache := profiles.NewCache(redisClient, cfg.ProfileCacheTTL)
	profileService := profiles.NewService(profileRepo, userRepo, profileCache)

	grantRepo := grants.NewRepository(pool)
	notifier := grants.NewNotifier(redisClient, logger)

	refreshJob := jobs.NewGrantsRefreshJob(notifier, logger, metrics)
	expiryJob := jobs.NewGrantExpiryJob(grantRepo, jobClient, logger, metrics)
	warmupJob := jobs.NewProfileWarmupJob(userRepo, tenantRepo, profileService, logger, metrics)

	warmupTask, err := jobs.NewProfileWarmupTask(jobs.ProfileWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeGrantsRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskTypeGrantExpiry, Handler: expiryJob.Handle},
			{Type: jobs.TaskTypeProfileWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: jobs.NewGrantExpiryTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 5 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
