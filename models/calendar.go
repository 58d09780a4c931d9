package models

import (
	"fmt"
	"strings"
	"time"
)

// OpenForBookingsLabel marks a calendar event as bookable time. Matching is case-insensitive.
const OpenForBookingsLabel = "open for bookings"

// EventTime mirrors the calendar API's start/end shape: either a timed instant or an all-day date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"` // RFC 3339 instant
	Date     string `json:"date,omitempty"`     // "2006-01-02" for all-day events
}

// HasDateTime reports whether the bound is a concrete instant.
func (t EventTime) HasDateTime() bool {
	return t.DateTime != ""
}

// Time parses the dateTime bound, keeping its UTC offset.
func (t EventTime) Time() (time.Time, error) {
	if t.DateTime == "" {
		return time.Time{}, fmt.Errorf("event time has no dateTime (date %q)", t.Date)
	}
	return time.Parse(time.RFC3339, t.DateTime)
}

// CalendarEvent is the subset of a calendar event the booking core consumes.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
}

// IsOpenForBookings reports whether the event label marks an open window.
func (e CalendarEvent) IsOpenForBookings() bool {
	return strings.ToLower(e.Summary) == OpenForBookingsLabel
}

// Window converts a timed event into a TimeWindow. All-day events and
// events whose end does not follow their start are rejected.
func (e CalendarEvent) Window() (TimeWindow, error) {
	start, err := e.Start.Time()
	if err != nil {
		return TimeWindow{}, fmt.Errorf("event %s start: %w", e.ID, err)
	}
	end, err := e.End.Time()
	if err != nil {
		return TimeWindow{}, fmt.Errorf("event %s end: %w", e.ID, err)
	}
	return NewTimeWindow(start, end)
}

// NewCalendarEvent is what the core asks the calendar to create.
type NewCalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow enforces Start < End.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, fmt.Errorf("invalid window: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Overlaps applies the half-open rule: touching windows do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Duration of the window.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
