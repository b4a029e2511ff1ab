package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	billingapp "github.com/kellertobias/servobill-sub000/internal/application/billing"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/config"
)

// SMTPSender delivers email through a plain SMTP relay. Attachments are
// encoded as a MIME multipart message so rendered PDFs can travel along.
type SMTPSender struct {
	host     string
	port     int
	from     string
	username string
	password string
	logger   *zap.Logger
}

// NewSMTPSender creates a sender from the outbound email configuration
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}
}

// Send delivers the message. Authentication is used only when a username is
// configured; local relays usually run without it.
func (s *SMTPSender) Send(ctx context.Context, msg billingapp.EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("email message has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	body := buildMessage(s.from, msg)

	start := time.Now()
	if err := smtp.SendMail(addr, auth, s.from, []string{msg.To}, body); err != nil {
		s.logger.Error("email delivery failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	s.logger.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Bool("has_attachment", len(msg.Attachment) > 0),
		zap.Duration("duration", time.Since(start)))
	return nil
}

const attachmentBoundary = "servobill-attachment-boundary"

// buildMessage renders the RFC 5322 message bytes. With no attachment a
// simple text message is produced, otherwise a multipart/mixed one.
func buildMessage(from string, msg billingapp.EmailMessage) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachment) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.Body)
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", attachmentBoundary)

	fmt.Fprintf(&buf, "--%s\r\n", attachmentBoundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", attachmentBoundary)
	buf.WriteString("Content-Type: application/pdf\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", msg.AttachmentName)

	encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
	// 76 character lines per RFC 2045
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", attachmentBoundary)
	return buf.Bytes()
}

var _ billingapp.EmailSender = (*SMTPSender)(nil)
