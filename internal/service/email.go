package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"eventhub-backend/internal/logger"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendClubInvite(ctx context.Context, email, clubName, inviteCode string, expiresAt time.Time) error {
	subject := fmt.Sprintf("You're invited to join %s", clubName)
	plainText := fmt.Sprintf("Hello,\n\nYou have been invited to join %s.\n\nUse this invite code to accept or decline:\n\n%s\n\nThe invite expires on %s.\n\nSee you there,\nThe EventHub Team",
		clubName, inviteCode, expiresAt.Format("Jan 2, 2006"))
	htmlContent := fmt.Sprintf(`<p>Hello,</p>
<p>You have been invited to join <strong>%s</strong>.</p>
<p>Use this invite code to accept or decline:</p>
<p><code>%s</code></p>
<p>The invite expires on %s.</p>`, clubName, inviteCode, expiresAt.Format("Jan 2, 2006"))

	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail("", email), plainText, htmlContent)

	logger.ExternalServiceCall("SendGrid", "SendClubInvite", "to", email)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "SendClubInvite", err)
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("SendGrid", "SendClubInvite", err)
		return err
	}
	logger.ExternalServiceResult("SendGrid", "SendClubInvite", nil, "status", response.StatusCode)
	return nil
}

type logEmailService struct{}

// NewLogEmailService returns an EmailService that only logs, for environments without an API key.
func NewLogEmailService() EmailService {
	return logEmailService{}
}

func (logEmailService) SendClubInvite(ctx context.Context, email, clubName, inviteCode string, expiresAt time.Time) error {
	logger.Info("Invite email suppressed", "to", email, "club", clubName, "expiresAt", expiresAt)
	return nil
}
