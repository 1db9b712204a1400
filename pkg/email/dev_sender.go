package email

import (
	"context"
	"log/slog"
)

type devSender struct {
	logger *slog.Logger
}

// NewDevSender returns a sender that only logs the message. Used in
// development where no Postmark tokens are configured.
func NewDevSender(logger *slog.Logger) EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &devSender{logger: logger}
}

func (s *devSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email suppressed in development",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.Int("body_bytes", len(params.BodyHTML)),
	)
	return nil
}
