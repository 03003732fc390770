// Package email renders notification templates and delivers them.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// ErrUnknownTemplate is returned for a template name with no definition.
var ErrUnknownTemplate = errors.New("unknown email template")

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Render executes the named template with data.
func Render(template string, data map[string]any) (*Message, error) {
	tmpl, ok := templates[template]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	}

	var subject, text, html bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return nil, err
	}
	if err := tmpl.text.Execute(&text, data); err != nil {
		return nil, err
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return nil, err
	}

	return &Message{Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}

// SendGridSender delivers email through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender creates a new SendGridSender.
func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send renders template and sends it to recipient.
func (s *SendGridSender) Send(ctx context.Context, template, recipient string, data map[string]any) error {
	msg, err := Render(template, data)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", recipient)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

// LogSender writes rendered email to the logger instead of delivering it.
// Used when no SendGrid key is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send renders template and logs it.
func (s *LogSender) Send(ctx context.Context, template, recipient string, data map[string]any) error {
	msg, err := Render(template, data)
	if err != nil {
		return err
	}

	s.logger.Info("email",
		zap.String("template", template),
		zap.String("to", recipient),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
