// Package mailer sends the transactional mail the auth flows need:
// signup OTPs and password reset links. Delivery uses plain SMTP; when
// no SMTP host is configured the message is logged instead so the
// flows stay testable in development.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer submits mail through a single SMTP endpoint.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewFromEnv builds a Mailer from SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASS and SMTP_FROM. Host empty means log-only mode.
func NewFromEnv() *Mailer {
	m := &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
	if m.port == "" {
		m.port = "587"
	}
	if m.from == "" {
		m.from = "no-reply@infonest.local"
	}
	return m
}

// Send delivers a plain-text message. In log-only mode the body is
// written to the application log and no error is returned.
func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" {
		log.Printf("mailer: (log-only) to=%s subject=%q\n%s", to, subject, body)
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.from, to, subject, body)
	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
