package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"net/textproto"
	"strings"
	"time"

	"chelmassage/models"

	"github.com/google/uuid"
)

// buildMessage renders an RFC 822 message: multipart/mixed with a quoted-printable
// HTML part and, when present, a base64 attachment.
func buildMessage(from string, msg models.MailMessage, now time.Time) ([]byte, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, ErrNoRecipient
	}
	for name, value := range map[string]string{"From": from, "To": msg.To, "Subject": msg.Subject} {
		if err := checkHeaderValue(name, value); err != nil {
			return nil, err
		}
	}
	to, err := netmail.ParseAddress(strings.TrimSpace(msg.To))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, msg.To, err)
	}
	if msg.Attachment != nil {
		if err := checkHeaderValue("attachment filename", msg.Attachment.Filename); err != nil {
			return nil, err
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	htmlHeader.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := mw.CreatePart(htmlHeader)
	if err != nil {
		return nil, fmt.Errorf("mail: html part: %w", err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(msg.HTMLBody)); err != nil {
		return nil, fmt.Errorf("mail: html body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("mail: html body: %w", err)
	}

	if a := msg.Attachment; a != nil && len(a.Data) > 0 {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": a.Filename}))
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		part, err := mw.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("mail: attachment part: %w", err)
		}
		if err := writeBase64Lines(part, a.Data); err != nil {
			return nil, fmt.Errorf("mail: attachment: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mail: closing multipart: %w", err)
	}

	var out bytes.Buffer
	writeHeader(&out, "From", from)
	writeHeader(&out, "To", formatAddress(to))
	writeHeader(&out, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&out, "Date", now.Format(time.RFC1123Z))
	writeHeader(&out, "Message-ID", fmt.Sprintf("<%s@%s>", uuid.New().String(), domainOf(from)))
	writeHeader(&out, "MIME-Version", "1.0")
	writeHeader(&out, "Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// checkHeaderValue rejects CR and LF so callers cannot add header lines.
func checkHeaderValue(name, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s contains a line break", ErrInvalidHeader, name)
	}
	return nil
}

func formatAddress(a *netmail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return a.String()
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

// writeBase64Lines wraps at 76 characters per RFC 2045.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return strings.Trim(addr[i+1:], "> ")
	}
	return "localhost"
}
