package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewSendGrid builds a SendGrid-backed mailer.
func NewSendGrid(cfg config.SendgridConfig, store config.StoreConfig) (*SendGridMailer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromName:  "AS-Electrica",
		fromEmail: store.FromEmail,
	}, nil
}

// Send delivers the message, treating non-2xx API statuses as errors.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToAddress)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainBody, msg.HTMLBody)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes would-be emails to the log. Used when no API key is
// configured so local environments never hit SendGrid.
type LogMailer struct {
	logg *logger.Logger
}

// NewLogMailer builds the logging fallback mailer.
func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

// Send logs the message instead of delivering it.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"to":      msg.ToAddress,
			"subject": msg.Subject,
		})
		m.logg.Info(ctx, "email suppressed (no sendgrid key configured)")
	}
	return nil
}

// New selects the SendGrid mailer when a key is configured, otherwise the
// logging fallback.
func New(cfg config.SendgridConfig, store config.StoreConfig, logg *logger.Logger) (Mailer, error) {
	if cfg.APIKey == "" {
		return NewLogMailer(logg), nil
	}
	return NewSendGrid(cfg, store)
}
