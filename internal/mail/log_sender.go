package mail

import (
	"context"
	"log/slog"
)

// LogSender stands in for a real relay in dev. It logs the delivery but never
// the body, which can carry reset tokens and passwords.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "mail.delivered",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
