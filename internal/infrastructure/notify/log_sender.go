// Package notify holds EmailSender implementations.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/core/ports"
)

// LogSender records notifications in the log instead of delivering them.
// The body is never logged because it may carry a reset code.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

var _ ports.EmailSender = (*LogSender)(nil)

func (s *LogSender) Send(ctx context.Context, n ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info().
		Str("to", n.To).
		Str("subject", n.Subject).
		Int("body_bytes", len(n.Body)).
		Msg("notification accepted")
	return nil
}
