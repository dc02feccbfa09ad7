package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/patient-portal/internal/config"
)

// Service sends portal mail. Delivery failures are the caller's to log;
// nothing in the portal treats mail as critical path.
type Service interface {
	SendWelcome(to, name string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewService returns an SMTP-backed sender, or a no-op one when SMTP is
// not configured.
func NewService(cfg config.SMTPConfig) Service {
	if !cfg.Enabled {
		return &noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendWelcome(to, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to the patient portal")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour patient portal account is ready. You can log in at any time to view and update your details.\n",
		name,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

type noopService struct{}

func (n *noopService) SendWelcome(string, string) error { return nil }
