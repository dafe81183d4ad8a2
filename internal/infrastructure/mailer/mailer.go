package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"job-board/internal/config"

	"github.com/wneessen/go-mail"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport delivers a single message.
type Transport interface {
	Send(ctx context.Context, m Message) error
}

// New returns an SMTP transport when SMTP is configured and a logging sink
// otherwise.
func New(cfg config.SMTPConfig, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Configured() {
		logger.Warn("smtp not configured, emails will be logged and discarded")
		return NewLogSink(logger)
	}
	return &SMTP{cfg: cfg}
}

type SMTP struct {
	cfg config.SMTPConfig
}

func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	c, err := s.client()
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// LogSink discards messages after recording them.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Send(_ context.Context, m Message) error {
	l.logger.Info("email discarded, no transport configured", "to", m.To, "subject", m.Subject)
	return nil
}
