package alerts

import (
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"os"
	"strings"

	"github.com/licitapp/licitapp/internal/models"
)

// Mailer delivers one digest email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends through a plain SMTP submission endpoint with
// STARTTLS, the setup used with Gmail app passwords.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
}

// NewSMTPMailerFromEnv builds a mailer from SMTP_HOST, SMTP_USER and
// SMTP_PASS. It returns nil when the trio is incomplete; the caller
// then skips sending, which keeps dry runs harmless.
func NewSMTPMailerFromEnv() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	if host == "" || user == "" || pass == "" {
		return nil
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.User)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, auth, m.User, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// Run matches every subscriber against the snapshot and mails each one
// with at least one hit. Per-recipient failures are logged and counted
// but never abort the batch.
func Run(mailer Mailer, subscribers []models.Subscriber, tenders []models.Tender) (sent, failed int) {
	for _, sub := range subscribers {
		if sub.Email == "" {
			continue
		}

		matches := Match(sub, tenders)
		if len(matches) == 0 {
			continue
		}

		subject, body := BuildDigest(matches)
		if err := mailer.Send(sub.Email, subject, body); err != nil {
			log.Printf("Failed to send alert to %s: %v", sub.Email, err)
			failed++
			continue
		}
		log.Printf("Sent alert to %s (%d matches)", sub.Email, len(matches))
		sent++
	}
	return sent, failed
}
