package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chelmassage/models"
	"chelmassage/services/mail"
	"chelmassage/services/sheets"
	"chelmassage/services/storage"

	"go.uber.org/zap"
)

// NotificationService performs the slow follow-up work of a booking or an intake submission.
type NotificationService interface {
	BookingConfirmed(ctx context.Context, n models.BookingNotification) error
	IntakeSubmitted(ctx context.Context, n models.IntakeNotification) error
}

// DefaultNotificationService sends mail, keeps the client registry and archives intake forms.
// Sheets and Archive are optional.
type DefaultNotificationService struct {
	Mailer        mail.Mailer
	Sheets        sheets.Service
	Archive       storage.ArchiveService
	SpreadsheetID string
	AdminEmail    string
	BaseURL       string
	BusinessName  string
	Location      *time.Location
	Logger        *zap.Logger
}

func NewDefaultNotificationService(
	mailer mail.Mailer,
	sheetsSvc sheets.Service,
	archive storage.ArchiveService,
	spreadsheetID, adminEmail, baseURL, businessName string,
	loc *time.Location,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if mailer == nil || logger == nil {
		return nil, fmt.Errorf("notification service initialization error: mailer or logger is nil")
	}
	if adminEmail == "" {
		return nil, fmt.Errorf("notification service initialization error: admin email is empty")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultNotificationService{
		Mailer:        mailer,
		Sheets:        sheetsSvc,
		Archive:       archive,
		SpreadsheetID: spreadsheetID,
		AdminEmail:    adminEmail,
		BaseURL:       baseURL,
		BusinessName:  businessName,
		Location:      loc,
		Logger:        logger,
	}, nil
}

// BookingConfirmed mails the client (when an address was given) and the operator.
// Both sends are attempted; their errors are joined.
func (s *DefaultNotificationService) BookingConfirmed(ctx context.Context, n models.BookingNotification) error {
	var errs []error

	if n.Client.Email != "" {
		msg, err := s.clientConfirmation(n)
		if err == nil {
			err = s.Mailer.Send(ctx, msg)
		}
		if err != nil {
			s.Logger.Warn("failed to send client confirmation", zap.String("jobID", n.JobID), zap.Error(err))
			errs = append(errs, fmt.Errorf("client confirmation: %w", err))
		} else {
			s.Logger.Info("sent client confirmation", zap.String("jobID", n.JobID))
		}
	}

	msg, err := s.operatorBooking(n)
	if err == nil {
		err = s.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.Logger.Warn("failed to send operator booking email", zap.String("jobID", n.JobID), zap.Error(err))
		errs = append(errs, fmt.Errorf("operator booking email: %w", err))
	} else {
		s.Logger.Info("sent operator booking email", zap.String("jobID", n.JobID))
	}

	return errors.Join(errs...)
}

// IntakeSubmitted records the client, mails the rendered form to the operator
// and archives it. Each step runs even when an earlier one failed.
func (s *DefaultNotificationService) IntakeSubmitted(ctx context.Context, n models.IntakeNotification) error {
	var errs []error
	submittedAt := n.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	if err := s.recordIntake(ctx, n.Form, submittedAt); err != nil {
		s.Logger.Error("failed to update client registry", zap.String("jobID", n.JobID), zap.Error(err))
		errs = append(errs, fmt.Errorf("client registry: %w", err))
	}

	msg, err := s.operatorIntake(n)
	if err == nil {
		err = s.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.Logger.Error("failed to send intake form email", zap.String("jobID", n.JobID), zap.Error(err))
		errs = append(errs, fmt.Errorf("operator intake email: %w", err))
	}

	if s.Archive != nil && len(n.PDF) > 0 {
		path, err := s.Archive.ArchiveIntake(ctx, n.Form.AttachmentName(), n.PDF, submittedAt)
		if err != nil {
			s.Logger.Error("failed to archive intake form", zap.String("jobID", n.JobID), zap.Error(err))
			errs = append(errs, fmt.Errorf("archive: %w", err))
		} else {
			s.Logger.Info("archived intake form", zap.String("jobID", n.JobID), zap.String("object", path))
		}
	}

	return errors.Join(errs...)
}
