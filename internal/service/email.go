package service

import (
	"context"
	"fmt"

	"gatehouse-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender builds the outbound mail collaborator. An empty API key
// yields a sender that logs instead of delivering, which keeps development
// environments mail-free.
func NewSendGridSender(apiKey, fromEmail, fromName string) EmailSender {
	if apiKey == "" {
		return noopSender{}
	}
	return &sendgridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendgridSender) Send(ctx context.Context, toEmail, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil)
	return nil
}

type noopSender struct{}

func (noopSender) Send(ctx context.Context, toEmail, subject, body string) error {
	logger.Info("Email delivery disabled, dropping message", "to", toEmail, "subject", subject)
	return nil
}
