package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"chelmassage/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotifyBooking = "notify:booking"
	TypeNotifyIntake  = "notify:intake"

	QueueNotifications = "notifications"
	// asynq puts a deadline on every task; without one it applies its 30 minute default.
	taskTimeout = 2 * time.Minute
)

// Notification tasks are never retried; a failed task is archived.
func taskOptions(jobID string) []asynq.Option {
	opts := []asynq.Option{
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(0),
		asynq.Timeout(taskTimeout),
	}
	if jobID != "" {
		opts = append(opts, asynq.TaskID(jobID))
	}
	return opts
}

func NewBookingNotificationTask(n models.BookingNotification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypeNotifyBooking, b), taskOptions(n.JobID), nil
}

func NewIntakeNotificationTask(n models.IntakeNotification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypeNotifyIntake, b), taskOptions(n.JobID), nil
}

func ParseBookingNotification(t *asynq.Task) (models.BookingNotification, error) {
	var n models.BookingNotification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return n, nil
}

func ParseIntakeNotification(t *asynq.Task) (models.IntakeNotification, error) {
	var n models.IntakeNotification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return n, nil
}
