package booking

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"chelmassage/models"
)

const dateLayout = "2006-01-02"

// naive layouts are read as UTC.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseSlotRequest validates the availability query parameters.
func ParseSlotRequest(dateStr, durationStr string) (models.SlotRequest, error) {
	dateStr = strings.TrimSpace(dateStr)
	durationStr = strings.TrimSpace(durationStr)
	if dateStr == "" || durationStr == "" {
		return models.SlotRequest{}, newValidationError("date,duration", "both 'date' and 'duration' query parameters are required")
	}
	day, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return models.SlotRequest{}, newValidationError("date", "date should be YYYY-MM-DD")
	}
	minutes, err := strconv.Atoi(durationStr)
	if err != nil {
		return models.SlotRequest{}, newValidationError("duration", "duration should be an integer number of minutes")
	}
	if minutes <= 0 {
		return models.SlotRequest{}, newValidationError("duration", "duration must be positive")
	}
	if minutes > models.MaxServiceMinutes {
		return models.SlotRequest{}, newValidationError("duration", "duration must not exceed 1440 minutes")
	}
	return models.SlotRequest{Date: day, ServiceDurationMinutes: minutes}, nil
}

// ParseStartTime accepts RFC 3339 (with or without fractional seconds) and offset-less ISO times as UTC.
func ParseStartTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, newValidationError("start_time", "start_time should be an ISO-8601 timestamp")
}

// NewBookingRequest validates the book payload and derives the calendar footprint.
func NewBookingRequest(in models.BookingRequestInput, idempotencyKey string) (models.BookingRequest, error) {
	start, err := ParseStartTime(in.StartTime)
	if err != nil {
		return models.BookingRequest{}, err
	}
	duration := int(in.ServiceDuration)
	if duration <= 0 {
		return models.BookingRequest{}, newValidationError("service_duration", "service_duration must be a positive integer")
	}
	if duration > models.MaxServiceMinutes {
		return models.BookingRequest{}, newValidationError("service_duration", "service_duration must not exceed 1440 minutes")
	}
	if strings.TrimSpace(in.Summary) == "" {
		return models.BookingRequest{}, newValidationError("summary", "summary is required")
	}
	if err := validateClientEmail(in.Client.Email); err != nil {
		return models.BookingRequest{}, err
	}
	return models.BookingRequest{
		Start:           start,
		End:             start.Add(time.Duration(duration+models.BufferMinutes) * time.Minute),
		DurationMinutes: duration,
		Summary:         in.Summary,
		Description:     in.Description,
		Client:          in.Client,
		IdempotencyKey:  strings.TrimSpace(idempotencyKey),
	}, nil
}

// validateClientEmail accepts an empty email or a single bare address.
func validateClientEmail(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.ContainsAny(raw, "\r\n") {
		return newValidationError("client.email", "email must not contain line breaks")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return newValidationError("client.email", "email should be a single address like name@example.com")
	}
	return nil
}
