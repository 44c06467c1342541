package mail

import (
	"fmt"
	"html"
	"log"
	"net/smtp"

	"github.com/alfredflix/alfredflix/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// Mailer bundles the transactional emails the storefront sends.
type Mailer struct{}

// NewMailer returns a mailer using the SMTP settings from the environment.
func NewMailer() *Mailer {
	return &Mailer{}
}

// SendWelcome greets a freshly signed-up member.
func (m *Mailer) SendWelcome(email, username string) error {
	return SendMail(email, "Welcome to AlfredFlix", welcomeBody(username))
}

// SendContactNotification forwards a contact-form submission to support.
func (m *Mailer) SendContactNotification(supportEmail, name, fromEmail, message string) error {
	subject := fmt.Sprintf("New contact message from %s", name)
	return SendMail(supportEmail, subject, contactNotificationBody(name, fromEmail, message))
}

// Member-supplied values are HTML-escaped; the bodies are sent as text/html.
func welcomeBody(username string) string {
	return fmt.Sprintf(`
		<h2>Welcome aboard, %s!</h2>
		<p>Your AlfredFlix subscription is active. Sign in with your username
		and password to start watching.</p>
		<p>Share your username as a referral code and your friends get their
		first month for $1 while you earn credit.</p>
	`, html.EscapeString(username))
}

func contactNotificationBody(name, fromEmail, message string) string {
	return fmt.Sprintf(`
		<h3>New contact form submission</h3>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p>%s</p>
	`, html.EscapeString(name), html.EscapeString(fromEmail), html.EscapeString(message))
}
