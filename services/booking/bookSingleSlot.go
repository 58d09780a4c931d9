package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"chelmassage/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConflictCheckMargin widens the pre-insert read on both sides to tolerate skew and adjacent events.
const ConflictCheckMargin = time.Hour

// FindConflict returns the first busy event overlapping w. Open windows and
// all-day events never conflict. Events whose ID is in ignore are skipped.
func FindConflict(w models.TimeWindow, events []models.CalendarEvent, ignore ...string) (*models.CalendarEvent, bool) {
	for i := range events {
		ev := events[i]
		if ev.IsOpenForBookings() || !ev.Start.HasDateTime() || !ev.End.HasDateTime() {
			continue
		}
		if slices.Contains(ignore, ev.ID) {
			continue
		}
		start, err := ev.Start.Time()
		if err != nil {
			continue
		}
		end, err := ev.End.Time()
		if err != nil {
			continue
		}
		if w.Start.Before(end) && w.End.After(start) {
			return &ev, true
		}
	}
	return nil, false
}

// TryBook re-reads the calendar around the proposed interval and rejects it
// with ErrSlotConflict when a busy event overlaps.
//
// The read and the subsequent insert are not atomic: nothing locks the
// calendar between them, so a concurrent booking can still slip in.
func (s *DefaultBookingService) TryBook(ctx context.Context, w models.TimeWindow) error {
	events, err := s.Calendar.ListEvents(ctx, s.CalendarID, w.Start.Add(-ConflictCheckMargin), w.End.Add(ConflictCheckMargin))
	if err != nil {
		return fmt.Errorf("%w: overlap check: %w", ErrCalendarUnavailable, err)
	}
	if ev, found := FindConflict(w, events); found {
		s.Logger.Info("booking rejected: overlaps busy event",
			zap.String("eventID", ev.ID),
			zap.Time("start", w.Start),
			zap.Time("end", w.End),
		)
		return ErrSlotConflict
	}
	return nil
}

// Book runs the overlap guard, creates the calendar event and hands the
// notification work to the dispatcher. Notification failures never undo the booking.
func (s *DefaultBookingService) Book(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	if !req.Start.Before(req.End) {
		return nil, newValidationError("service_duration", "booking must end after it starts")
	}

	if req.IdempotencyKey != "" {
		prior, ok, err := s.Idempotency.Get(ctx, req.IdempotencyKey)
		if err != nil {
			s.Logger.Warn("idempotency lookup failed; continuing", zap.String("key", req.IdempotencyKey), zap.Error(err))
		} else if ok {
			s.Logger.Info("replaying completed booking", zap.String("key", req.IdempotencyKey))
			return prior, nil
		}
	}

	window := req.Window()
	if err := s.TryBook(ctx, window); err != nil {
		return nil, err
	}

	created, err := s.Calendar.InsertEvent(ctx, s.CalendarID, models.NewCalendarEvent{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create event: %w", ErrCalendarUnavailable, err)
	}
	if created == nil {
		return nil, fmt.Errorf("%w: create event returned nothing", ErrCalendarUnavailable)
	}
	s.Logger.Info("event created", zap.String("eventID", created.ID), zap.String("link", created.HTMLLink))

	possibleConflict := false
	if s.PostVerify {
		possibleConflict = s.verifyAfterInsert(ctx, window, created.ID)
	}

	confirmation := &models.BookingConfirmation{
		Message:   "Booking successful!",
		EventLink: created.HTMLLink,
		EventID:   created.ID,
	}

	if req.IdempotencyKey != "" {
		if err := s.Idempotency.Put(ctx, req.IdempotencyKey, *confirmation); err != nil {
			s.Logger.Warn("failed to store idempotency key", zap.String("key", req.IdempotencyKey), zap.Error(err))
		}
	}

	note := models.BookingNotification{
		JobID:            uuid.New().String(),
		Summary:          req.Summary,
		Start:            req.Start,
		End:              req.End,
		Client:           req.Client,
		Comments:         req.Comments(),
		EventLink:        created.HTMLLink,
		PossibleConflict: possibleConflict,
	}
	// The request context ends with the response; the job must outlive it.
	if err := s.Dispatcher.DispatchBooking(context.WithoutCancel(ctx), note); err != nil {
		s.Logger.Error("failed to queue booking notifications",
			zap.String("eventID", created.ID), zap.String("jobID", note.JobID), zap.Error(err))
	}

	return confirmation, nil
}

// verifyAfterInsert looks for busy events other than ours inside the booked window.
// A hit is logged and flagged for the operator; the booking is never rolled back.
func (s *DefaultBookingService) verifyAfterInsert(ctx context.Context, w models.TimeWindow, createdID string) bool {
	events, err := s.Calendar.ListEvents(ctx, s.CalendarID, w.Start, w.End)
	if err != nil {
		s.Logger.Warn("post-insert verification skipped", zap.String("eventID", createdID), zap.Error(err))
		return false
	}
	ev, found := FindConflict(w, events, createdID)
	if !found {
		return false
	}
	s.Logger.Warn("possible double booking detected after insert",
		zap.String("eventID", createdID),
		zap.String("overlappingEventID", ev.ID),
		zap.String("overlappingSummary", ev.Summary),
	)
	return true
}

// IsConflict reports whether err is a booking conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotConflict)
}
