package booking

import (
	"context"
	"fmt"
	"time"

	"chelmassage/models"

	"go.uber.org/zap"
)

// SplitWindows separates timed events into open and busy windows by label.
// All-day events and events with unusable bounds are skipped.
func SplitWindows(events []models.CalendarEvent, logger *zap.Logger) (open, busy []models.TimeWindow) {
	for _, ev := range events {
		if !ev.Start.HasDateTime() || !ev.End.HasDateTime() {
			continue
		}
		w, err := ev.Window()
		if err != nil {
			if logger != nil {
				logger.Warn("skipping calendar event with unusable bounds",
					zap.String("eventID", ev.ID), zap.Error(err))
			}
			continue
		}
		if ev.IsOpenForBookings() {
			open = append(open, w)
		} else {
			busy = append(busy, w)
		}
	}
	return open, busy
}

// AvailableStarts fetches the day's events fresh and runs the slot engine over them.
func (s *DefaultBookingService) AvailableStarts(ctx context.Context, req models.SlotRequest) ([]time.Time, error) {
	if req.ServiceDurationMinutes <= 0 {
		return nil, newValidationError("duration", "duration must be positive")
	}
	day := req.DayWindow()
	events, err := s.Calendar.ListEvents(ctx, s.CalendarID, day.Start, day.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}

	open, busy := SplitWindows(events, s.Logger)
	starts := ComputeAvailableStarts(req, open, busy)

	s.Logger.Debug("computed availability",
		zap.String("date", day.Start.Format(dateLayout)),
		zap.Int("durationMinutes", req.ServiceDurationMinutes),
		zap.Int("openWindows", len(open)),
		zap.Int("busyWindows", len(busy)),
		zap.Int("starts", len(starts)),
	)
	return starts, nil
}
