package booking

import (
	"context"
	"fmt"
	"time"

	"chelmassage/models"
	"chelmassage/services/calendar"
	"chelmassage/services/notification"

	"go.uber.org/zap"
)

// BookingService answers availability questions and books appointments against the calendar.
type BookingService interface {
	AvailableDays(ctx context.Context, daysToScan int) ([]string, error)
	AvailableStarts(ctx context.Context, req models.SlotRequest) ([]time.Time, error)
	Book(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Calendar    calendar.Service
	CalendarID  string
	Dispatcher  notification.Dispatcher
	Idempotency IdempotencyStore
	// PostVerify re-reads the booked interval after insert to surface concurrent double bookings.
	PostVerify bool
	Now        func() time.Time
	Logger     *zap.Logger
}

func NewDefaultBookingService(
	cal calendar.Service,
	calendarID string,
	dispatcher notification.Dispatcher,
	idem IdempotencyStore,
	postVerify bool,
	logger *zap.Logger,
) (*DefaultBookingService, error) {
	if cal == nil || dispatcher == nil || logger == nil {
		return nil, fmt.Errorf("booking service initialization error: calendar, dispatcher or logger is nil")
	}
	if calendarID == "" {
		return nil, fmt.Errorf("booking service initialization error: calendar ID is empty")
	}
	if idem == nil {
		idem = NewMemoryIdempotencyStore(24 * time.Hour)
	}
	return &DefaultBookingService{
		Calendar:    cal,
		CalendarID:  calendarID,
		Dispatcher:  dispatcher,
		Idempotency: idem,
		PostVerify:  postVerify,
		Now:         time.Now,
		Logger:      logger,
	}, nil
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
