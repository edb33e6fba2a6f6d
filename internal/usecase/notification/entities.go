package notification

import (
	"context"

	notifDomain "contentops-workflow/internal/domain/notification"
)

// EmailSender delivers one email; implementations may simulate the send.
type EmailSender interface {
	SendEmail(ctx context.Context, to string, p notifDomain.Payload) error
}

// WebhookSender posts one chat message to a webhook URL.
type WebhookSender interface {
	PostWebhook(ctx context.Context, webhookURL string, p notifDomain.Payload, mention string) error
}

type DispatchInput struct {
	ApprovalRequestID string
	RecipientID       string
	Channel           notifDomain.ChannelKind
	Payload           notifDomain.Payload
}

type Settings struct {
	Email notifDomain.EmailConfig `json:"email"`
	Slack notifDomain.SlackConfig `json:"slack"`
}

// SettingsInput replaces the config of each channel that is present.
type SettingsInput struct {
	Email *notifDomain.EmailConfig `json:"email,omitempty"`
	Slack *notifDomain.SlackConfig `json:"slack,omitempty"`
}
