package tasks

import (
	"context"
	"fmt"

	"chelmassage/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqDispatcher queues notification jobs in Redis for the worker started by
// cron.InitNotificationWorker.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewAsynqDispatcher(redisOpt asynq.RedisConnOpt, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{client: asynq.NewClient(redisOpt), logger: logger}
}

func (d *AsynqDispatcher) DispatchBooking(ctx context.Context, n models.BookingNotification) error {
	task, opts, err := NewBookingNotificationTask(n)
	if err != nil {
		return fmt.Errorf("building booking task: %w", err)
	}
	return d.enqueue(ctx, task, opts, n.JobID)
}

func (d *AsynqDispatcher) DispatchIntake(ctx context.Context, n models.IntakeNotification) error {
	task, opts, err := NewIntakeNotificationTask(n)
	if err != nil {
		return fmt.Errorf("building intake task: %w", err)
	}
	return d.enqueue(ctx, task, opts, n.JobID)
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option, jobID string) error {
	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	d.logger.Debug("notification task enqueued",
		zap.String("jobID", jobID),
		zap.String("taskID", info.ID),
		zap.String("queue", info.Queue),
	)
	return nil
}

// Shutdown closes the Redis connection; queued tasks stay in Redis for the worker.
func (d *AsynqDispatcher) Shutdown(context.Context) error {
	return d.client.Close()
}
