package adapters

import (
	"context"
	"fmt"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/features/notifications/domain"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPNotifier implements ports.Notifier over SMTP.
type SMTPNotifier struct {
	cfg config.MailConfig
}

// NewSMTPNotifier creates a new SMTPNotifier.
func NewSMTPNotifier(cfg config.MailConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Send delivers msg in its own SMTP session.
func (n *SMTPNotifier) Send(ctx context.Context, msg domain.Message) error {
	m, err := n.buildMessage(msg)
	if err != nil {
		return &apperror.NotificationDeliveryError{To: msg.To, Err: err}
	}

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
	if err != nil {
		return &apperror.NotificationDeliveryError{To: msg.To, Err: fmt.Errorf("create smtp client: %w", err)}
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return &apperror.NotificationDeliveryError{To: msg.To, Err: err}
	}

	logger.FromContext(ctx).Info("Notification sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func (n *SMTPNotifier) buildMessage(msg domain.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", n.cfg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(15 * time.Second),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return opts
}
