package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/lucerolu/Dshb-dm/internal/app"
	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/platform/cache"
	"github.com/lucerolu/Dshb-dm/jobs"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	apiClient := compras.NewClient(cfg.APIBase, cfg.APIToken)
	dataCache := cache.NewTTL(redisClient, cfg.CacheTTL)
	comprasService := compras.NewService(apiClient, dataCache, logger)

	warmupJob := jobs.NewCacheWarmupJob(comprasService, logger)
	warmupTask, err := jobs.NewCacheWarmupTask(jobs.CacheWarmupPayload{Reason: "scheduled"})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	minutes := int(cfg.WarmupInterval.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	spec := fmt.Sprintf("*/%d * * * *", minutes)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCacheWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: spec, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// Seed the cache right away instead of waiting for the first cron
	// tick. Failure to enqueue is not fatal, the schedule still fires.
	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := queueClient.EnqueueCacheWarmup(ctx, jobs.CacheWarmupPayload{Reason: "startup"}); err != nil {
		logger.Warn("enqueue startup warmup", slog.Any("error", err))
	}
	if err := queueClient.Close(); err != nil {
		logger.Warn("queue client close", slog.Any("error", err))
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
