package notifier

import (
	"context"
	"fmt"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"

	"gopkg.in/gomail.v2"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends plain-text alert emails over SMTP with implicit TLS.
type EmailNotifier struct {
	from   string
	to     string
	sender Sender
}

// NewEmailNotifier dials host:port with SSL and authenticates as from.
func NewEmailNotifier(host string, port int, from, password, to string) *EmailNotifier {
	d := gomail.NewDialer(host, port, from, password)
	d.SSL = true
	return NewEmailNotifierWithSender(from, to, d)
}

func NewEmailNotifierWithSender(from, to string, s Sender) *EmailNotifier {
	return &EmailNotifier{from: from, to: to, sender: s}
}

var _ drepo.Notifier = (*EmailNotifier)(nil)

// Notify composes and sends one message. gomail has no context support;
// a cancelled ctx only short-circuits before dialing.
func (n *EmailNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: email: %v", models.ErrNotify, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", alert.Subject())
	m.SetBody("text/plain", alert.Body())

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: email to %s: %v", models.ErrNotify, n.to, err)
	}
	return nil
}
