package mail

import (
	"context"
	"errors"

	"chelmassage/models"
)

// ErrNoRecipient is returned for messages without a To address.
var ErrNoRecipient = errors.New("mail: message has no recipient")

var (
	// ErrInvalidHeader is returned when a header value holds a line break.
	ErrInvalidHeader = errors.New("mail: invalid header value")
	// ErrInvalidAddress is returned when To is not a single RFC 5322 address.
	ErrInvalidAddress = errors.New("mail: invalid recipient address")
)

// Mailer delivers one HTML message, optionally with a single attachment.
type Mailer interface {
	Send(ctx context.Context, msg models.MailMessage) error
}

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("mail: sender is not configured")

// Unavailable stands in when no sender mailbox is configured; every send fails.
type Unavailable struct{}

func (Unavailable) Send(context.Context, models.MailMessage) error {
	return ErrNotConfigured
}
