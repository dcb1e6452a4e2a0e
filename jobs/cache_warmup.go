// Package jobs contains the background workers that keep the
// dashboard caches warm.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lucerolu/Dshb-dm/internal/compras"
)

// CacheWarmupJob refreshes the purchase, statement and last-update
// caches so page loads never pay the upstream latency.
type CacheWarmupJob struct {
	Service *compras.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewCacheWarmupJob wires dependencies for the warmup handler.
func NewCacheWarmupJob(service *compras.Service, logger *slog.Logger) *CacheWarmupJob {
	return &CacheWarmupJob{
		Service: service,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes cache warmup tasks.
func (j *CacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("cache warmup: handler not configured")
	}
	var payload CacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting cache warmup")

	started := j.now()
	warmCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := j.Service.Warm(warmCtx); err != nil {
		logger.Error("cache warmup failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed cache warmup", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *CacheWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCacheWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCacheWarmup))
}

func (j *CacheWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
