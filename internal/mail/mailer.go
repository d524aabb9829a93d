package mail

import (
	"gopkg.in/gomail.v2"

	"travel/internal/config"
)

// Message is an outgoing email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email messages.
type Sender interface {
	Send(msg Message) error
}

// Mailer delivers email over SMTP.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewMailer creates a Mailer from SMTP configuration.
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send dials the SMTP server and delivers msg with a plain text part and,
// when set, an HTML alternative.
func (m *Mailer) Send(msg Message) error {
	return m.dialer.DialAndSend(m.build(msg))
}

func (m *Mailer) build(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", gm.FormatAddress(m.from, m.fromName))
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}
	return gm
}

var _ Sender = (*Mailer)(nil)
