// Package mail sends the transactional emails of the storefront over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"storefront/internal/platform/metrics"
)

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Brand    string
}

// LoadConfigFromEnv reads SMTP_* variables.
func LoadConfigFromEnv() Config {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	brand := os.Getenv("MAIL_BRAND")
	if brand == "" {
		brand = "Storefront"
	}
	return Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     from,
		Brand:    brand,
	}
}

// Enabled reports whether enough settings are present to talk to an SMTP server.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// dialer is the part of gomail.Dialer used to deliver messages.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers activation and password reset emails.
type SMTPSender struct {
	dialer dialer
	from   string
	brand  string
}

// NewSMTPSender creates a sender backed by a gomail dialer.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		brand:  cfg.Brand,
	}
}

// SendActivation sends the account activation link.
func (s *SMTPSender) SendActivation(ctx context.Context, to, name, link string) error {
	body, err := render(activationTmpl, activationData{Name: name, Link: link, Brand: s.brand})
	if err != nil {
		return err
	}
	return s.send(ctx, "activation", to, fmt.Sprintf("Activate your %s account", s.brand), body)
}

// SendPasswordReset sends the password reset link.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, link string) error {
	body, err := render(resetTmpl, resetData{Link: link, Brand: s.brand})
	if err != nil {
		return err
	}
	return s.send(ctx, "password_reset", to, fmt.Sprintf("Reset your %s password", s.brand), body)
}

func (s *SMTPSender) send(ctx context.Context, kind, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		metrics.EmailFailed(kind)
		slog.Error("email delivery failed", "kind", kind, "to", to, "error", err)
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	slog.Info("email sent", "kind", kind, "to", to)
	return nil
}

// LogSender writes links to the log instead of sending email.
// It is used when SMTP is not configured.
type LogSender struct{}

// SendActivation logs the activation link.
func (LogSender) SendActivation(ctx context.Context, to, name, link string) error {
	slog.Warn("SMTP disabled, activation email not sent", "to", to, "link", link)
	return nil
}

// SendPasswordReset logs the reset link.
func (LogSender) SendPasswordReset(ctx context.Context, to, link string) error {
	slog.Warn("SMTP disabled, password reset email not sent", "to", to, "link", link)
	return nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
