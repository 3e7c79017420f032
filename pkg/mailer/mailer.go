package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends HTML email through an authenticated SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

func New(server string, port int, sender, password string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(server, port, sender, password),
		sender: sender,
	}
}

// SendHTML delivers a single HTML message to the recipient.
func (m *Mailer) SendHTML(recipient, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}
	return nil
}
