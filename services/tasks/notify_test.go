package tasks

import (
	"errors"
	"testing"
	"time"

	"chelmassage/models"

	"github.com/hibiken/asynq"
)

func TestBookingNotificationTask(t *testing.T) {
	n := models.BookingNotification{
		JobID:   "job-1",
		Summary: "60 Minute Massage",
		Start:   time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
		Client:  models.ClientInfo{FirstName: "Ann", Email: "ann@example.com"},
	}
	task, opts, err := NewBookingNotificationTask(n)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TypeNotifyBooking {
		t.Fatalf("type: %q", task.Type())
	}
	if len(opts) != 4 {
		t.Fatalf("expected queue, retry, timeout and id options, got %d", len(opts))
	}

	got, err := ParseBookingNotification(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.JobID != "job-1" || !got.Start.Equal(n.Start) || got.Client.Email != "ann@example.com" {
		t.Fatalf("payload: %+v", got)
	}
}

func TestTaskOptionsWithoutJobID(t *testing.T) {
	if got := len(taskOptions("")); got != 3 {
		t.Fatalf("expected 3 options, got %d", got)
	}
}

func TestParseRejectsGarbageWithoutRetry(t *testing.T) {
	_, err := ParseIntakeNotification(asynq.NewTask(TypeNotifyIntake, []byte("{not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
