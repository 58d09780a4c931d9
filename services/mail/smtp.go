package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"chelmassage/models"

	"go.uber.org/zap"
)

// transport is one way of handing a raw message to an SMTP server.
type transport struct {
	name string
	send func(ctx context.Context, from, to string, raw []byte) error
}

// SMTPMailer sends through an SMTP relay with an app password, trying
// implicit TLS first and falling back to STARTTLS.
type SMTPMailer struct {
	From       string
	logger     *zap.Logger
	transports []transport
	now        func() time.Time
}

func NewSMTPMailer(host, from, password string, sslPort, startTLSPort int, logger *zap.Logger) *SMTPMailer {
	// App passwords are often shown grouped with spaces.
	password = strings.ReplaceAll(password, " ", "")
	auth := smtp.PlainAuth("", from, password, host)
	tlsConfig := &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	m := &SMTPMailer{From: from, logger: logger, now: time.Now}
	m.transports = []transport{
		{
			name: "ssl:" + strconv.Itoa(sslPort),
			send: func(ctx context.Context, from, to string, raw []byte) error {
				d := tls.Dialer{NetDialer: &net.Dialer{Timeout: 15 * time.Second}, Config: tlsConfig}
				conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(sslPort)))
				if err != nil {
					return err
				}
				return deliver(conn, host, auth, nil, from, to, raw)
			},
		},
		{
			name: "starttls:" + strconv.Itoa(startTLSPort),
			send: func(ctx context.Context, from, to string, raw []byte) error {
				d := net.Dialer{Timeout: 15 * time.Second}
				conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(startTLSPort)))
				if err != nil {
					return err
				}
				return deliver(conn, host, auth, tlsConfig, from, to, raw)
			},
		},
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg models.MailMessage) error {
	raw, err := buildMessage(m.From, msg, m.now())
	if err != nil {
		return err
	}

	var errs []error
	for _, t := range m.transports {
		err := t.send(ctx, m.From, msg.To, raw)
		if err == nil {
			m.logger.Info("email sent", zap.String("to", msg.To), zap.String("transport", t.name))
			return nil
		}
		m.logger.Warn("smtp transport failed", zap.String("transport", t.name), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
	}
	return fmt.Errorf("mail: all smtp transports failed: %w", errors.Join(errs...))
}

// deliver runs one SMTP session on conn. startTLS is nil when conn is already encrypted.
func deliver(conn net.Conn, host string, auth smtp.Auth, startTLS *tls.Config, from, to string, raw []byte) error {
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if startTLS != nil {
		if err := c.StartTLS(startTLS); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
