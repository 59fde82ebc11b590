package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	appConfig "github.com/n11047500/Capstone-2024-sub000/config"
	"gopkg.in/gomail.v2"
)

// Attachment is a file sent along with an email
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Email is a single outbound HTML message
type Email struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer delivers emails
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer sends email through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// LogMailer logs emails instead of sending them; used when SMTP is not configured
type LogMailer struct{}

var mailerInstance Mailer

// InitMailer initializes the mailer from configuration
func InitMailer() Mailer {
	cfg := appConfig.GetConfig()
	if !cfg.MailEnabled() {
		log.Printf("SMTP_HOST not set, outgoing email will only be logged")
		mailerInstance = LogMailer{}
		return mailerInstance
	}

	mailerInstance = NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	return mailerInstance
}

// NewSMTPMailer creates a mailer for the given relay
func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// GetMailer returns the initialized mailer instance
func GetMailer() Mailer {
	return mailerInstance
}

// SetMailer sets the mailer instance (primarily for testing)
func SetMailer(mailer Mailer) {
	mailerInstance = mailer
}

// Send builds the MIME message and delivers it
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.buildMessage(email)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	if email.ReplyTo != "" {
		msg.SetHeader("Reply-To", email.ReplyTo)
	}
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTMLBody)

	for _, a := range email.Attachments {
		content := a.Content
		msg.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return msg
}

// Send logs the recipients and subject
func (LogMailer) Send(ctx context.Context, email Email) error {
	log.Printf("Email to %v: %s (%d attachments)", email.To, email.Subject, len(email.Attachments))
	return nil
}

// MockMailer records sent emails for tests
type MockMailer struct {
	Err error

	mu   sync.Mutex
	sent []Email
}

// NewMockMailer creates a new mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// SetAsMockForTesting sets this mock as the global mailer instance for testing
func (m *MockMailer) SetAsMockForTesting() {
	SetMailer(m)
}

// Send records the email, or returns Err when set
func (m *MockMailer) Send(ctx context.Context, email Email) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of every email sent
func (m *MockMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.sent...)
}
