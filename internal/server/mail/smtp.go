package mail

import (
	"context"

	"github.com/dkravetz/sixtyfix/internal/logging"
	"github.com/dkravetz/sixtyfix/internal/server/config"
	gomail "github.com/wneessen/go-mail"
)

// dialAndSend is a seam for testing SMTP delivery without a live server.
var dialAndSend = func(ctx context.Context, c *gomail.Client, m *gomail.Msg) error {
	return c.DialAndSendWithContext(ctx, m)
}

// SMTPNotifier sends mail through a configured SMTP relay.
type SMTPNotifier struct {
	cfg    config.MailConfig
	logger logging.Logger
}

// NewNotifier selects the delivery implementation once at startup: a real
// SMTP sender when the config names a server and a sender address, otherwise
// the logging fallback. Call sites never branch on availability themselves.
func NewNotifier(cfg config.MailConfig, logger logging.Logger) Notifier {
	if cfg.Server == "" || cfg.DefaultSender == "" {
		return NewLogNotifier(logger)
	}
	return &SMTPNotifier{cfg: cfg, logger: logger.With("module", "mail")}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) bool {
	msg := gomail.NewMsg()
	if err := msg.From(n.cfg.DefaultSender); err != nil {
		n.logger.Warn(ctx, "mail send failed", "error", err.Error())
		return false
	}
	if err := msg.To(to); err != nil {
		n.logger.Warn(ctx, "mail send failed", "error", err.Error())
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{gomail.WithPort(n.cfg.Port)}
	if n.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(n.cfg.Username),
			gomail.WithPassword(n.cfg.Password),
		)
	}

	client, err := gomail.NewClient(n.cfg.Server, opts...)
	if err != nil {
		n.logger.Warn(ctx, "mail client init failed", "error", err.Error())
		return false
	}

	if err := dialAndSend(ctx, client, msg); err != nil {
		n.logger.Warn(ctx, "mail send failed", "error", err.Error())
		n.logger.Info(ctx, "mail fallback body", "body", body)
		return false
	}

	return true
}
