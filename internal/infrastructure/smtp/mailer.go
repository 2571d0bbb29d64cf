package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/go-retail-api/internal/config"
)

// Mailer sends transactional email. The registration flow treats a send as
// atomic pass/fail and never retries.
type Mailer interface {
	SendOTPEmail(to, code, name string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendOTPEmail(to, code, name string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour verification code is: %s\r\n\r\nIf you did not request this, you can ignore this email.", name, code)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
