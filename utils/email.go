package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/adityan21/campus-event-backend/config"
)

// ======================
// SMTP Configuration
// ======================
type mailerConfig struct {
	host        string
	port        string
	username    string
	password    string
	fromName    string
	fromEmail   string
	frontendURL string
}

var mailer mailerConfig

// InitMailer wires the SMTP transport from the loaded config, same
// pattern as InitRedis/InitKafka. Without it every send is a logged
// no-op.
func InitMailer(cfg *config.Config) {
	mailer = mailerConfig{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromName:    cfg.SMTPFromName,
		fromEmail:   cfg.SMTPFromEmail,
		frontendURL: cfg.FrontendURL,
	}
	if mailer.host == "" {
		fmt.Println("⚠️ SMTP not configured, emails will be skipped")
	}
}

// ======================
// Low-level sendEmail with STARTTLS
// ======================
func sendEmail(to, subject, body string) error {
	fmt.Printf("📧 Sending email to %s: %s\n", to, subject)

	if mailer.host == "" || mailer.username == "" || mailer.password == "" {
		fmt.Println("⚠️ SMTP not configured. Email not sent.")
		return nil
	}

	fromEmail := mailer.fromEmail
	if fromEmail == "" {
		fromEmail = mailer.username
	}

	addr := fmt.Sprintf("%s:%s", mailer.host, mailer.port)

	// Dial plain first, then upgrade. tls.Dial fails against servers that
	// only speak STARTTLS on 587.
	client, err := smtp.Dial(addr)
	if err != nil {
		fmt.Printf("❌ Failed to dial SMTP server: %v\n", err)
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true, // Docker environments
		ServerName:         mailer.host,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		fmt.Printf("❌ TLS connection error: %v\n", err)
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", mailer.username, mailer.password, mailer.host)
	if err := client.Auth(auth); err != nil {
		fmt.Printf("❌ SMTP auth error: %v\n", err)
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(fromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := fromEmail
	if mailer.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mailer.fromName, fromEmail)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body))

	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		fmt.Printf("⚠️ QUIT command error (non-critical): %v\n", err)
	}

	fmt.Println("✅ Email sent successfully!")
	return nil
}

// ======================
// Password Reset
// ======================
func SendResetLink(toEmail string, resetToken string) error {
	baseURL := mailer.frontendURL
	if baseURL == "" {
		baseURL = "http://localhost:5173" // Vite dev server
		fmt.Println("⚠️ FRONTEND_URL not set, using default:", baseURL)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", baseURL, resetToken)
	subject := "Reset your password"
	body := fmt.Sprintf("Click here to reset your password: %s\n\nThis link expires in 30 minutes. If you did not request a password reset, please ignore this email.", resetURL)

	return sendEmail(toEmail, subject, body)
}

// ======================
// Registration Emails
// ======================
func SendRegistrationConfirmedEmail(toEmail, fullName, eventTitle, qrCode string) error {
	subject := fmt.Sprintf("You're confirmed for %s", eventTitle)
	body := fmt.Sprintf("Hello %s,\n\nYour registration for \"%s\" is confirmed.\n\nYour check-in code: %s\n\nShow this code at the venue to check in.", fullName, eventTitle, qrCode)
	return sendEmail(toEmail, subject, body)
}

func SendRegistrationWaitlistedEmail(toEmail, fullName, eventTitle string) error {
	subject := fmt.Sprintf("You're on the waitlist for %s", eventTitle)
	body := fmt.Sprintf("Hello %s,\n\n\"%s\" is currently full, so you've been placed on the waitlist. We'll email you if a spot opens up.", fullName, eventTitle)
	return sendEmail(toEmail, subject, body)
}

func SendWaitlistPromotedEmail(toEmail, fullName, eventTitle, qrCode string) error {
	subject := fmt.Sprintf("A spot opened up for %s", eventTitle)
	body := fmt.Sprintf("Hello %s,\n\nGood news! A spot opened up and your registration for \"%s\" is now confirmed.\n\nYour check-in code: %s", fullName, eventTitle, qrCode)
	return sendEmail(toEmail, subject, body)
}
