package notifier

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ricirt/sender-queue/internal/config"
)

// SMTPNotifier sends mail through a relay, without authentication unless
// credentials are given. A message is attempted once.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(cfg config.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, "", ""),
		from:   cfg.From,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return errors.New("send mail: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.Recipients...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail via %s:%d: %w", n.dialer.Host, n.dialer.Port, err)
	}
	return nil
}

// compile-time check that SMTPNotifier implements Notifier
var _ Notifier = (*SMTPNotifier)(nil)
