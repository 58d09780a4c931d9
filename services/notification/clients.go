package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chelmassage/models"

	"go.uber.org/zap"
)

const (
	clientEmailRange  = "Clients!C:C"
	clientAppendRange = "Clients!A1"
	intakeAppendRange = "Intake Forms!A1"
)

// recordIntake adds first-time clients to the Clients sheet and logs every
// submission on the Intake Forms sheet.
func (s *DefaultNotificationService) recordIntake(ctx context.Context, form models.IntakeForm, submittedAt time.Time) error {
	if s.Sheets == nil || s.SpreadsheetID == "" {
		s.Logger.Warn("client registry not configured; skipping sheets update")
		return nil
	}
	var errs []error

	if form.Email != "" {
		known, err := s.Sheets.GetColumn(ctx, s.SpreadsheetID, clientEmailRange)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("reading client emails: %w", err))
		case !containsEmail(known, form.Email):
			s.Logger.Info("new client detected; adding to registry", zap.String("email", form.Email))
			row := []string{form.FirstName, form.LastName, form.Email, form.Phone, form.DOB, form.Address}
			if err := s.Sheets.AppendRow(ctx, s.SpreadsheetID, clientAppendRange, row); err != nil {
				errs = append(errs, fmt.Errorf("adding client: %w", err))
			}
		}
	}

	row := []string{
		submittedAt.In(s.Location).Format("2006-01-02 15:04:05"),
		form.ClientName(),
		form.Reason,
		form.Conditions.String(),
		form.Allergies,
	}
	if err := s.Sheets.AppendRow(ctx, s.SpreadsheetID, intakeAppendRange, row); err != nil {
		errs = append(errs, fmt.Errorf("logging intake: %w", err))
	}
	return errors.Join(errs...)
}

func containsEmail(known []string, email string) bool {
	email = strings.TrimSpace(email)
	for _, k := range known {
		if strings.EqualFold(strings.TrimSpace(k), email) {
			return true
		}
	}
	return false
}
