package calendar

import (
	"context"
	"errors"
	"time"

	"chelmassage/models"
)

// ErrNotConfigured is returned when no calendar client could be built at startup.
var ErrNotConfigured = errors.New("calendar service is not configured")

// ErrNoCalendarID means CALENDAR_ID was left empty.
var ErrNoCalendarID = errors.New("CALENDAR_ID is not set")

// PlaceholderID is handed to the booking core when CALENDAR_ID is empty.
// Unavailable never sends it anywhere.
const PlaceholderID = "unconfigured"

// Service is the slice of the external calendar the booking core depends on.
type Service interface {
	// ListEvents returns single (expanded) events overlapping [timeMin, timeMax), ordered by start.
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]models.CalendarEvent, error)
	// InsertEvent creates a timed event and returns it as stored by the calendar.
	InsertEvent(ctx context.Context, calendarID string, ev models.NewCalendarEvent) (*models.CalendarEvent, error)
}

// Unavailable stands in for the calendar when credentials could not be loaded,
// so the HTTP surface can still report the failure per request.
type Unavailable struct {
	Reason error
}

func (u Unavailable) err() error {
	if u.Reason == nil {
		return ErrNotConfigured
	}
	return errors.Join(ErrNotConfigured, u.Reason)
}

func (u Unavailable) ListEvents(context.Context, string, time.Time, time.Time) ([]models.CalendarEvent, error) {
	return nil, u.err()
}

func (u Unavailable) InsertEvent(context.Context, string, models.NewCalendarEvent) (*models.CalendarEvent, error) {
	return nil, u.err()
}

// Resolve builds the calendar for calendarID. An empty ID or a failed build
// yields Unavailable plus the reason, so the HTTP surface answers 503.
func Resolve(ctx context.Context, calendarID string, build func(context.Context) (Service, error)) (Service, string, error) {
	if calendarID == "" {
		return Unavailable{Reason: ErrNoCalendarID}, PlaceholderID, ErrNoCalendarID
	}
	svc, err := build(ctx)
	if err != nil {
		return Unavailable{Reason: err}, calendarID, err
	}
	return svc, calendarID, nil
}
