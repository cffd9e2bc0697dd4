package mail

import (
	"context"
	"log/slog"
)

// LogSender just logs the message instead of delivering it. This is the
// default when no provider is configured, so local stacks work without
// mail credentials.
type LogSender struct {
	Log *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.Log.Info("email (not sent, log sender active)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
