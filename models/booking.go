package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BufferMinutes pads every appointment for cleanup and travel.
const BufferMinutes = 10

// MaxServiceMinutes caps a service at the 24-hour day window it is scheduled in.
const MaxServiceMinutes = 24 * 60

// ClientInfo identifies who booked.
type ClientInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name, skipping blanks.
func (c ClientInfo) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// BookingRequestInput is the POST /api/book payload.
type BookingRequestInput struct {
	StartTime       string     `json:"start_time" binding:"required"`
	ServiceDuration FlexInt    `json:"service_duration" binding:"required"`
	Summary         string     `json:"summary" binding:"required"`
	Description     string     `json:"description"`
	Client          ClientInfo `json:"client"`
}

// BookingRequest is a validated booking with its derived calendar footprint.
type BookingRequest struct {
	Start           time.Time
	End             time.Time // Start + duration + buffer
	DurationMinutes int
	Summary         string
	Description     string
	Client          ClientInfo
	IdempotencyKey  string
}

// Window is the interval the booking occupies on the calendar.
func (r BookingRequest) Window() TimeWindow {
	return TimeWindow{Start: r.Start, End: r.End}
}

// Comments is the free-text part of the description, without the frontend's "Comments: " prefix.
func (r BookingRequest) Comments() string {
	return strings.ReplaceAll(r.Description, "Comments: ", "")
}

// BookingConfirmation is returned to the caller once the calendar accepted the event.
type BookingConfirmation struct {
	Message   string `json:"message"`
	EventLink string `json:"event_link"`
	EventID   string `json:"-"`
}

// FlexInt accepts a JSON integer or a string holding one.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return fmt.Errorf("integer expected, got null")
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("integer expected, got %s", string(b))
	}
	*f = FlexInt(n)
	return nil
}

// SlotRequest asks for the start times on one UTC day that fit a service.
type SlotRequest struct {
	Date                   time.Time // midnight UTC of the requested day
	ServiceDurationMinutes int
}

// TotalBlock is the calendar footprint: service plus buffer.
func (r SlotRequest) TotalBlock() time.Duration {
	return time.Duration(r.ServiceDurationMinutes+BufferMinutes) * time.Minute
}

// DayWindow is the fixed 24-hour UTC window the request covers.
func (r SlotRequest) DayWindow() TimeWindow {
	start := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: start, End: start.Add(24 * time.Hour)}
}
