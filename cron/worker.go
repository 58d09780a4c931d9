package cron

import (
	"context"
	"fmt"
	"time"

	"chelmassage/config"
	"chelmassage/services/notification"
	"chelmassage/services/tasks"
	"chelmassage/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisConnOpt is the asynq connection for the notification queue.
func RedisConnOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitNotificationWorker starts the asynq server that runs queued booking and
// intake notifications. The caller owns the returned server and shuts it down.
func InitNotificationWorker(ctx context.Context, notifSvc notification.NotificationService) (*asynq.Server, error) {
	logger := utils.GetLogger()
	concurrency := config.AppConfig.NotifyWorkers
	if concurrency <= 0 {
		concurrency = 1
	}

	srv := asynq.NewServer(
		RedisConnOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueNotifications: 1,
			},
			Logger: logger.Sugar(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				id, _ := asynq.GetTaskID(ctx)
				logger.Error("notification task failed",
					zap.String("type", task.Type()),
					zap.String("taskID", id),
					zap.Error(err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotifyBooking, handleBookingTask(notifSvc))
	mux.HandleFunc(tasks.TypeNotifyIntake, handleIntakeTask(notifSvc))

	const maxAttempts = 5
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = srv.Start(mux); err == nil {
			break
		}
		logger.Warn("notification worker failed to start",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		if attempts < maxAttempts {
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("notification worker: %w", err)
	}
	logger.Info("notification worker started", zap.Int("concurrency", concurrency))

	if client, err := utils.NewRedisClient(config.AppConfig.RedisQueueDB); err == nil {
		go monitorRedisConnection(ctx, client, logger)
	}
	return srv, nil
}

func handleBookingTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseBookingNotification(task)
		if err != nil {
			return err
		}
		return notifSvc.BookingConfirmed(ctx, n)
	}
}

func handleIntakeTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseIntakeNotification(task)
		if err != nil {
			return err
		}
		return notifSvc.IntakeSubmitted(ctx, n)
	}
}

// monitorRedisConnection pings the queue database periodically to surface failures at runtime.
func monitorRedisConnection(ctx context.Context, client *redis.Client, logger *zap.Logger) {
	defer client.Close()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("notification queue redis unreachable", zap.Error(err))
			}
		}
	}
}
