package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotConflict means the proposed interval overlaps a busy event. Not retryable with the same input.
	ErrSlotConflict = errors.New("the selected time slot is no longer available")
	// ErrCalendarUnavailable wraps any failure talking to the calendar.
	ErrCalendarUnavailable = errors.New("calendar unavailable")
)

// ValidationError reports a malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
