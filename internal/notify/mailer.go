package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// EmailMessage is one outgoing mail.
type EmailMessage struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// EmailSender abstracts the SMTP call so tests can substitute delivery.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPSender sends mail through a plain SMTP server.
type SMTPSender struct {
	addr string
	auth smtp.Auth
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg EmailConfig) *SMTPSender {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{addr: addr, auth: auth}
}

// Send delivers the message via SMTP.
func (s *SMTPSender) Send(_ context.Context, msg EmailMessage) error {
	return smtp.SendMail(s.addr, s.auth, msg.From, msg.To, []byte(buildEmailData(msg)))
}

// Mailer turns queued notification events into email. Used by the worker
// service's queue consumer.
type Mailer struct {
	cfg    EmailConfig
	sender EmailSender
}

// NewMailer creates a Mailer. A nil sender defaults to SMTP.
func NewMailer(cfg EmailConfig, sender EmailSender) *Mailer {
	if sender == nil {
		sender = NewSMTPSender(cfg)
	}
	return &Mailer{cfg: cfg, sender: sender}
}

// Deliver renders and sends one notification event.
func (m *Mailer) Deliver(ctx context.Context, ev Event) error {
	if ev.To == "" {
		return fmt.Errorf("notification event has no recipient")
	}

	msg := EmailMessage{
		From: m.cfg.From,
		To:   []string{ev.To},
	}

	switch ev.Type {
	case EventAlert:
		msg.Subject = ev.Subject
		msg.Body = ev.Text
	case EventSignupConfirmation:
		msg.Subject = "Confirm your account"
		msg.Body = fmt.Sprintf("Welcome! Use this code to confirm your account: %s\n", ev.Data["hash"])
	default:
		return fmt.Errorf("unknown notification event type %q", ev.Type)
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildEmailData(msg EmailMessage) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ",")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
