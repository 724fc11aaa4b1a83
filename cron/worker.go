package cron

import (
	"context"
	"time"

	"servicehub/config"
	"servicehub/services/notification"
	"servicehub/services/tasks"
	"servicehub/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection shared by the worker and the enqueuing client.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitLifecycleWorker runs the lifecycle notification worker in background.
// The returned server is used for graceful shutdown.
func InitLifecycleWorker(dispatcher notification.Dispatcher) *asynq.Server {
	logger := utils.GetLogger()

	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueNotifications: 6,
				"default":                1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingLifecycle, HandleLifecycleTask(dispatcher, logger))

	go monitorRedisConnection(logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting lifecycle worker", zap.Int("concurrency", concurrency))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("Lifecycle worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Lifecycle worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleLifecycleTask decodes a lifecycle event and hands it to the dispatcher.
// A malformed payload is skipped rather than retried.
func HandleLifecycleTask(dispatcher notification.Dispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		event, err := tasks.ParseLifecycleTask(task)
		if err != nil {
			logger.Error("Dropping lifecycle task", zap.Error(err))
			return asynq.SkipRetry
		}
		if err := dispatcher.Dispatch(ctx, event); err != nil {
			logger.Warn("Lifecycle dispatch failed",
				zap.String("eventID", event.ID),
				zap.String("bookingID", event.BookingID),
				zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Queue Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
