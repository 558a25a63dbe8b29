package mail

import (
	"context"

	"github.com/dkravetz/sixtyfix/internal/logging"
)

// LogNotifier is the disabled-delivery fallback: it records the mail in the
// log and reports false so callers show the link to the user directly.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "mail")}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) bool {
	n.logger.Info(ctx, "mail not configured", "to", to, "subject", subject, "body", body)
	return false
}
