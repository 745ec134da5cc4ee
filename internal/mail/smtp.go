package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{cfg: cfg}

	if cfg.Host != "" && cfg.From != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}

	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)

	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	// gomail has no context support; run the dial in a goroutine so a dead
	// relay cannot wedge the worker past its deadline
	done := make(chan error, 1)

	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
