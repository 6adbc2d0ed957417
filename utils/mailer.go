package utils

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// SMTPMailer sends plain-text mail over SMTP. When the SMTP_* environment
// variables are not all set it logs the message instead of sending, which
// keeps local development working without a mail account.
type SMTPMailer struct {
	Logger zerolog.Logger
}

func NewSMTPMailer(logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{Logger: logger}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := EnvOrDefault("SMTP_FROM_NAME", "Bookable")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		m.Logger.Info().
			Str("to", MaskEmail(to)).
			Str("subject", subject).
			Msg("[MOCK EMAIL] SMTP not configured, message logged only")
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	subject = safe(subject)

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)

	msg := []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body + "\r\n")

	if err := smtp.SendMail(addr, auth, smtpUser, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", MaskEmail(to), err)
	}
	return nil
}
