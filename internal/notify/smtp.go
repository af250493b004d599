package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPSender sends email through a plain SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	from     string
	password string
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// NewSMTPSender creates an SMTP email sender
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:     config.Host,
		port:     config.Port,
		from:     config.From,
		password: config.Password,
	}
}

// Send implements EmailSender.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: \"MHAAS\" <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, to, subject, body)

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	addr := s.host + ":" + s.port

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}
