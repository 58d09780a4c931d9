package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"chelmassage/models"
	"chelmassage/utils"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends through the Gmail API as the sender mailbox.
type GmailMailer struct {
	From   string
	svc    *gmail.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewGmailMailer impersonates from via domain-wide delegation.
func NewGmailMailer(ctx context.Context, from string, logger *zap.Logger) (*GmailMailer, error) {
	opts, err := utils.DelegatedClientOptions(ctx, from, utils.ScopeGmailSend)
	if err != nil {
		return nil, err
	}
	return NewGmailMailerWithOptions(ctx, from, logger, opts...)
}

func NewGmailMailerWithOptions(ctx context.Context, from string, logger *zap.Logger, opts ...option.ClientOption) (*GmailMailer, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail: building service: %w", err)
	}
	return &GmailMailer{From: from, svc: svc, logger: logger, now: time.Now}, nil
}

func (g *GmailMailer) Send(ctx context.Context, msg models.MailMessage) error {
	raw, err := buildMessage(g.From, msg, g.now())
	if err != nil {
		return err
	}
	sent, err := g.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail: send: %w", err)
	}
	g.logger.Info("email sent", zap.String("to", msg.To), zap.String("transport", "gmail"), zap.String("messageID", sent.Id))
	return nil
}
