// Package mail delivers transactional email. Callers treat delivery as best
// effort: a failed send is reported, never retried.
package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"alcyxob/ecofit/internal/config"
)

var ErrInvalidMessage = errors.New("mail: message needs a recipient, a subject and a body")

// Message is a pre-rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" || m.Subject == "" || m.HTML == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It is the
// development driver.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "email not sent (log driver)",
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.HTML),
	)
	return nil
}

// New returns the mailer selected by cfg.Driver.
func New(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	if cfg.Driver == config.MailDriverSES {
		return NewSESMailer(ctx, cfg.Region, cfg.From, logger)
	}
	return NewLogMailer(logger), nil
}
