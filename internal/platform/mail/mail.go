// Package mail provides the outbound email seam for the portal. Real SMTP
// delivery lives outside the core; the log sender stands in for it in
// development and tests.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers a single email message.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SenderFunc is a function adapter for Sender.
type SenderFunc func(ctx context.Context, to, subject, body string) error

func (f SenderFunc) SendEmail(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// LogSender writes outbound mail to the structured log instead of sending it.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info().
		Str("type", "outbound_mail").
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email")
	return nil
}
