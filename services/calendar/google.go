package calendar

import (
	"context"
	"fmt"
	"time"

	"chelmassage/models"
	"chelmassage/utils"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const pageSize = 250

// GoogleService talks to Google Calendar v3.
type GoogleService struct {
	svc *gcal.Service
}

// NewGoogleService builds a client from the configured service account key.
func NewGoogleService(ctx context.Context) (*GoogleService, error) {
	opts, err := utils.GoogleClientOptions(utils.ScopeCalendar)
	if err != nil {
		return nil, err
	}
	return NewGoogleServiceWithOptions(ctx, opts...)
}

// NewGoogleServiceWithOptions is used by tests to point the client at a fake endpoint.
func NewGoogleServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*GoogleService, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: building service: %w", err)
	}
	return &GoogleService{svc: svc}, nil
}

func (g *GoogleService) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]models.CalendarEvent, error) {
	var (
		out       []models.CalendarEvent
		pageToken string
	)
	for {
		call := g.svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			MaxResults(pageSize).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("calendar: listing events: %w", err)
		}
		for _, item := range resp.Items {
			if item == nil {
				continue
			}
			out = append(out, fromAPI(item))
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return out, nil
}

func (g *GoogleService) InsertEvent(ctx context.Context, calendarID string, ev models.NewCalendarEvent) (*models.CalendarEvent, error) {
	body := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
	created, err := g.svc.Events.Insert(calendarID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: inserting event: %w", err)
	}
	out := fromAPI(created)
	return &out, nil
}

// Ping lists a single calendar-list entry; used by the health monitor.
func (g *GoogleService) Ping(ctx context.Context) error {
	_, err := g.svc.CalendarList.List().MaxResults(1).Context(ctx).Do()
	return err
}

func fromAPI(e *gcal.Event) models.CalendarEvent {
	out := models.CalendarEvent{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		HTMLLink:    e.HtmlLink,
	}
	if e.Start != nil {
		out.Start = models.EventTime{DateTime: e.Start.DateTime, Date: e.Start.Date}
	}
	if e.End != nil {
		out.End = models.EventTime{DateTime: e.End.DateTime, Date: e.End.Date}
	}
	return out
}
