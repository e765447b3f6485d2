package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"

	"ai-video-studio/internal/config"
	"ai-video-studio/internal/domain/ports/adapter"
	"ai-video-studio/internal/infra/logging"
	"ai-video-studio/internal/infra/metrics"
)

var _ adapter.Notifier = (*SMTPNotifier)(nil)

const channelEmail = "email"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails the completion notice to the job owner.
type SMTPNotifier struct {
	cfg      config.MailConfig
	sendMail sendMailFunc
	log      *zerolog.Logger
	dev      bool
}

func NewSMTPNotifier(cfg config.MailConfig, dev bool, logger *zerolog.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host not configured")
	}
	if cfg.From == "" {
		return nil, errors.New("from email not configured")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	l := logger.With().Str("component", "smtp_notifier").Logger()
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail, log: &l, dev: dev}, nil
}

func (s *SMTPNotifier) Send(ctx context.Context, n adapter.Notification) error {
	if n.To == "" {
		metrics.IncNotification(channelEmail, "skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.compose(n, time.Now())
	if err != nil {
		metrics.IncNotification(channelEmail, "failed")
		return fmt.Errorf("compose mail: %w", err)
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	// net/smtp has no context support; run the send aside and stop waiting on ctx
	done := make(chan error, 1)
	go func() { done <- s.sendMail(addr, auth, s.cfg.From, []string{n.To}, msg) }()
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		metrics.IncNotification(channelEmail, "failed")
		return fmt.Errorf("send mail: %w", err)
	}
	metrics.IncNotification(channelEmail, "sent")
	s.log.Debug().Str("to", logging.Redact(n.To, s.dev)).Msg("completion mail sent")
	return nil
}

func (s *SMTPNotifier) compose(n adapter.Notification, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Name: s.cfg.FromName, Address: s.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Address: n.To}})
	h.SetSubject("Your video is ready")
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, completionText(n)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func completionText(n adapter.Notification) string {
	var b strings.Builder
	b.WriteString("Your video has finished generating.\n\n")
	if p := strings.TrimSpace(n.Prompt); p != "" {
		b.WriteString("Prompt: ")
		b.WriteString(truncate(p, 200))
		b.WriteString("\n")
	}
	b.WriteString("Watch it here: ")
	b.WriteString(n.ResultLink)
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
