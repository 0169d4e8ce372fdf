// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package mail delivers transactional email (account activation, password reset).

It wraps gomail over plain SMTP. Delivery is fire-and-forget relative to the
HTTP response: callers launch sends in a goroutine and a failed send never
fails the originating request.
*/
package mail

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer sends account lifecycle emails.
type Mailer interface {
	// SendActivation mails the activation link for a freshly registered account.
	SendActivation(toEmail, fullName, token string) error

	// SendPasswordReset mails the password reset link.
	SendPasswordReset(toEmail, token string) error
}

// Config holds the SMTP relay settings.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	// FrontendURL is the base for activation/reset links shown to users.
	FrontendURL string
}

// SMTPMailer is the production [Mailer] backed by an SMTP relay.
type SMTPMailer struct {
	config Config
	logger *slog.Logger
}

// NewMailer returns a [Mailer]. When no SMTP host is configured it returns a
// logging no-op so development environments do not need a relay.
func NewMailer(config Config, logger *slog.Logger) Mailer {
	if config.Host == "" || config.FromAddress == "" {
		logger.Warn("smtp not configured, emails will be logged instead of sent")
		return &noopMailer{logger: logger}
	}
	return &SMTPMailer{config: config, logger: logger}
}

// SendActivation mails the activation link for a freshly registered account.
func (mailer *SMTPMailer) SendActivation(toEmail, fullName, token string) error {
	link := fmt.Sprintf("%s/account-activation/%s", strings.TrimRight(mailer.config.FrontendURL, "/"), token)

	message := gomail.NewMessage()
	message.SetHeader("From", mailer.config.FromAddress)
	message.SetHeader("To", toEmail)
	message.SetHeader("Subject", "Activate your Inkpost account")
	message.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nWelcome to Inkpost. Activate your account within 24 hours:\n%s\n\nIf you didn't sign up, ignore this email.",
		fullName, link,
	))
	message.AddAlternative("text/html", activationHTML(fullName, link))

	return mailer.send(message, toEmail, "activation")
}

// SendPasswordReset mails the password reset link.
func (mailer *SMTPMailer) SendPasswordReset(toEmail, token string) error {
	link := fmt.Sprintf("%s/password-reset/%s", strings.TrimRight(mailer.config.FrontendURL, "/"), token)

	message := gomail.NewMessage()
	message.SetHeader("From", mailer.config.FromAddress)
	message.SetHeader("To", toEmail)
	message.SetHeader("Subject", "Reset your password")
	message.SetBody("text/plain", fmt.Sprintf(
		"You recently requested to reset your password.\nClick on the link below to proceed:\n%s\nThis link will expire after one hour.\nIf you didn't request this, please ignore this email.",
		link,
	))
	message.AddAlternative("text/html", resetHTML(link))

	return mailer.send(message, toEmail, "password_reset")
}

// send dials the relay and dispatches one message.
func (mailer *SMTPMailer) send(message *gomail.Message, toEmail, kind string) error {
	dialer := gomail.NewDialer(mailer.config.Host, mailer.config.Port, mailer.config.Username, mailer.config.Password)
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("mail: send %s failed: %w", kind, err)
	}

	mailer.logger.Info("email_sent",
		slog.String("kind", kind),
		slog.String("to", toEmail),
	)
	return nil
}

// # Templates

func activationHTML(fullName, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Welcome to Inkpost, %s</h2>
    <p>Confirm your email address to start reading and writing:</p>
    <p><a href="%s" style="display:inline-block;padding:12px 20px;background:#0f172a;color:#fff;text-decoration:none;border-radius:8px;">Activate account</a></p>
    <p style="font-size:12px;color:#6b7280;">This link expires in 24 hours.</p>
  </div>
</body>
</html>`, fullName, link)
}

func resetHTML(link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Password reset</h2>
    <p>You recently requested to reset your Inkpost password.</p>
    <p><a href="%s" style="display:inline-block;padding:12px 20px;background:#0f172a;color:#fff;text-decoration:none;border-radius:8px;">Choose a new password</a></p>
    <p style="font-size:12px;color:#6b7280;">This link expires in one hour. If you didn't request this, ignore this email.</p>
  </div>
</body>
</html>`, link)
}

// # No-op fallback

type noopMailer struct {
	logger *slog.Logger
}

func (mailer *noopMailer) SendActivation(toEmail, fullName, token string) error {
	mailer.logger.Info("email_skipped",
		slog.String("kind", "activation"),
		slog.String("to", toEmail),
		slog.String("token", token),
	)
	return nil
}

func (mailer *noopMailer) SendPasswordReset(toEmail, token string) error {
	mailer.logger.Info("email_skipped",
		slog.String("kind", "password_reset"),
		slog.String("to", toEmail),
		slog.String("token", token),
	)
	return nil
}
