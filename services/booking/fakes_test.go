package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"chelmassage/models"

	"go.uber.org/zap"
)

func at(t *testing.T, rfc3339 string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		t.Fatalf("parse %q: %v", rfc3339, err)
	}
	return ts
}

func timedEvent(id, summary, start, end string) models.CalendarEvent {
	return models.CalendarEvent{
		ID:      id,
		Summary: summary,
		Start:   models.EventTime{DateTime: start},
		End:     models.EventTime{DateTime: end},
	}
}

type listCall struct {
	min, max time.Time
}

type fakeCalendar struct {
	mu        sync.Mutex
	events    []models.CalendarEvent
	listErr   error
	insertErr error
	lists     []listCall
	inserted  []models.NewCalendarEvent
	// afterInsert is added to the calendar alongside the created event.
	afterInsert []models.CalendarEvent
}

func (f *fakeCalendar) ListEvents(_ context.Context, _ string, timeMin, timeMax time.Time) ([]models.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, listCall{min: timeMin, max: timeMax})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.CalendarEvent(nil), f.events...), nil
}

func (f *fakeCalendar) InsertEvent(_ context.Context, _ string, ev models.NewCalendarEvent) (*models.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, ev)
	created := models.CalendarEvent{
		ID:       fmt.Sprintf("created-%d", len(f.inserted)),
		Summary:  ev.Summary,
		Start:    models.EventTime{DateTime: ev.Start.UTC().Format(time.RFC3339)},
		End:      models.EventTime{DateTime: ev.End.UTC().Format(time.RFC3339)},
		HTMLLink: "https://calendar.example.com/event/" + fmt.Sprint(len(f.inserted)),
	}
	f.events = append(f.events, created)
	f.events = append(f.events, f.afterInsert...)
	return &created, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	bookings []models.BookingNotification
	err      error
}

func (d *fakeDispatcher) DispatchBooking(_ context.Context, n models.BookingNotification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bookings = append(d.bookings, n)
	return d.err
}

func (d *fakeDispatcher) DispatchIntake(context.Context, models.IntakeNotification) error {
	return nil
}

func (d *fakeDispatcher) Shutdown(context.Context) error { return nil }

func newTestService(t *testing.T, cal *fakeCalendar, disp *fakeDispatcher) *DefaultBookingService {
	t.Helper()
	svc, err := NewDefaultBookingService(cal, "cal-1", disp, nil, true, zap.NewNop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
