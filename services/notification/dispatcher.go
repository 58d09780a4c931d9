package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chelmassage/models"

	"go.uber.org/zap"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is shut down")
)

// Dispatcher hands notification work to something that runs it after the
// HTTP response. Jobs are never retried, and the local pool neither cancels
// nor times them out.
type Dispatcher interface {
	DispatchBooking(ctx context.Context, n models.BookingNotification) error
	DispatchIntake(ctx context.Context, n models.IntakeNotification) error
	Shutdown(ctx context.Context) error
}

// JobFailure is one failed or panicked job.
type JobFailure struct {
	JobID string
	Kind  string
	Err   error
}

type job struct {
	id   string
	kind string
	ctx  context.Context
	run  func(ctx context.Context) error
}

// LocalDispatcher runs jobs on a fixed pool of goroutines fed by a bounded queue.
// Failures are reported on a channel drained by a logging goroutine.
type LocalDispatcher struct {
	svc      NotificationService
	logger   *zap.Logger
	jobs     chan job
	failures chan JobFailure

	mu     sync.RWMutex
	closed bool

	workers  sync.WaitGroup
	reporter sync.WaitGroup
}

func NewLocalDispatcher(svc NotificationService, workers, buffer int, logger *zap.Logger) *LocalDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	d := &LocalDispatcher{
		svc:      svc,
		logger:   logger,
		jobs:     make(chan job, buffer),
		failures: make(chan JobFailure, workers),
	}
	d.reporter.Add(1)
	go d.reportFailures()
	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	return d
}

func (d *LocalDispatcher) DispatchBooking(ctx context.Context, n models.BookingNotification) error {
	return d.enqueue(job{id: n.JobID, kind: "booking", ctx: ctx, run: func(ctx context.Context) error {
		return d.svc.BookingConfirmed(ctx, n)
	}})
}

func (d *LocalDispatcher) DispatchIntake(ctx context.Context, n models.IntakeNotification) error {
	return d.enqueue(job{id: n.JobID, kind: "intake", ctx: ctx, run: func(ctx context.Context) error {
		return d.svc.IntakeSubmitted(ctx, n)
	}})
}

func (d *LocalDispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- j:
		d.logger.Debug("notification job queued", zap.String("jobID", j.id), zap.String("kind", j.kind))
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *LocalDispatcher) work() {
	defer d.workers.Done()
	for j := range d.jobs {
		if err := d.run(j); err != nil {
			d.failures <- JobFailure{JobID: j.id, Kind: j.kind, Err: err}
		}
	}
}

func (d *LocalDispatcher) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return j.run(context.WithoutCancel(ctx))
}

func (d *LocalDispatcher) reportFailures() {
	defer d.reporter.Done()
	for f := range d.failures {
		d.logger.Error("notification job failed",
			zap.String("jobID", f.JobID),
			zap.String("kind", f.Kind),
			zap.Error(f.Err),
		)
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (d *LocalDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(d.failures)
		d.reporter.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher shutdown: %w", ctx.Err())
	}
}
