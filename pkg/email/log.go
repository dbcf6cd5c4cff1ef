package email

import (
	"context"

	"go-minimalapp/pkg/logger"
)

// LogTransport only logs messages. Used when no SMTP server is configured.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (LogTransport) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	logger.Log.InfoContext(ctx, "Mail not sent, no SMTP server configured",
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)
	return nil
}
