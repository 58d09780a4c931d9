package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"chelmassage/models"

	"go.uber.org/zap"
)

const (
	// DefaultDaysToScan is how far ahead the date picker looks.
	DefaultDaysToScan = 90
	// MaxDaysToScan bounds caller-supplied ranges.
	MaxDaysToScan = 365
)

// ListAvailableDates collects the distinct UTC dates of open-for-bookings events, ascending.
// It only says a day has open time, not that any given service fits.
func ListAvailableDates(events []models.CalendarEvent, logger *zap.Logger) []string {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if !ev.IsOpenForBookings() {
			continue
		}
		var day string
		switch {
		case ev.Start.HasDateTime():
			start, err := ev.Start.Time()
			if err != nil {
				if logger != nil {
					logger.Warn("skipping open event with bad start", zap.String("eventID", ev.ID), zap.Error(err))
				}
				continue
			}
			day = start.UTC().Format(dateLayout)
		case ev.Start.Date != "":
			day = ev.Start.Date
		default:
			continue
		}
		seen[day] = struct{}{}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// AvailableDays scans [now, now+daysToScan days) for days that have open time.
func (s *DefaultBookingService) AvailableDays(ctx context.Context, daysToScan int) ([]string, error) {
	if daysToScan <= 0 || daysToScan > MaxDaysToScan {
		daysToScan = DefaultDaysToScan
	}
	start := s.now().UTC()
	end := start.Add(time.Duration(daysToScan) * 24 * time.Hour)

	events, err := s.Calendar.ListEvents(ctx, s.CalendarID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}
	return ListAvailableDates(events, s.Logger), nil
}
