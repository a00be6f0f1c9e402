package mail

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"textgenai/internal/config"
	"textgenai/internal/core"
)

// GomailMailer sends transactional mail through an SMTP relay. Sends
// are synchronous; a rejected dial or recipient surfaces to the caller.
type GomailMailer struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewGomailMailer(cfg *config.Config, logger *slog.Logger) *GomailMailer {
	return &GomailMailer{cfg: cfg, logger: logger}
}

func (m *GomailMailer) SendOTP(to, name, code string) error {
	if err := m.checkConfig(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "OTP for Password Reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour OTP for password reset is: %s\n\nPlease use this within 5 minutes.\n\nThank you,\nTextGen-AI Team",
		name, code))

	if err := m.dialAndSend(msg); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	m.logger.Info("otp email sent", slog.String("to", to))
	return nil
}

func (m *GomailMailer) SendContact(name, replyTo, message string) error {
	if err := m.checkConfig(); err != nil {
		return err
	}
	if m.cfg.ContactEmail == "" {
		return fmt.Errorf("contact recipient not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", m.cfg.ContactEmail)
	msg.SetHeader("Reply-To", replyTo)
	msg.SetHeader("Subject", "New Contact Message from TextGen-AI")
	msg.SetBody("text/plain", fmt.Sprintf(
		"You received a message from TextGen-AI:\n\nName: %s\nEmail: %s\n\nMessage:\n%s",
		name, replyTo, message))

	if err := m.dialAndSend(msg); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	m.logger.Info("contact email sent", slog.String("from", replyTo))
	return nil
}

func (m *GomailMailer) checkConfig() error {
	if m.cfg.SMTPHost == "" || m.cfg.SMTPUser == "" || m.cfg.FromEmail == "" {
		return fmt.Errorf("email config missing")
	}
	return nil
}

func (m *GomailMailer) dialAndSend(msg *gomail.Message) error {
	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	return d.DialAndSend(msg)
}

var _ core.Mailer = (*GomailMailer)(nil)
