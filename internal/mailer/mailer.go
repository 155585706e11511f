// Package mailer sends notification email. Delivery is fire-and-forget:
// failures are logged and never block or fail the caller's request.
package mailer

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single message.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// New returns the SMTP sender when SMTP_HOST is configured, otherwise a
// no-op sender that only logs.
func New() Sender {
	if os.Getenv("SMTP_HOST") == "" {
		return noop{}
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	return &smtp{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("EMAIL_USER"),
		pass: os.Getenv("EMAIL_PASS"),
	}
}

// Notify sends in the background and logs failures.
func Notify(s Sender, to, subject, htmlBody string) {
	if to == "" {
		return
	}
	go func() {
		if err := s.Send(to, subject, htmlBody); err != nil {
			log.Printf("mailer: send to %s failed: %v", to, err)
		}
	}()
}

type smtp struct {
	host string
	port int
	user string
	pass string
}

func (s *smtp) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.user)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	return d.DialAndSend(m)
}

type noop struct{}

func (noop) Send(to, subject, _ string) error {
	log.Printf("mailer: SMTP not configured, dropping %q to %s", subject, to)
	return nil
}
