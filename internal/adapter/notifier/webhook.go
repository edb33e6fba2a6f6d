package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contentops-workflow/internal/domain/apperr"
	"contentops-workflow/internal/domain/notification"
)

// WebhookSender posts Slack-style {"text": ...} messages to a workspace webhook.
type WebhookSender struct {
	client *http.Client
}

func NewWebhookSender(timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{client: &http.Client{Timeout: timeout}}
}

// FormatSlackText renders "*subject*\nbody", then the action link and the mention when present.
func FormatSlackText(p notification.Payload, mention string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s", p.Subject, p.Body)
	if p.ActionURL != "" {
		fmt.Fprintf(&b, "\n<%s|Open request>", p.ActionURL)
	}
	if mention != "" {
		fmt.Fprintf(&b, "\n@%s", mention)
	}
	return b.String()
}

func (s *WebhookSender) PostWebhook(ctx context.Context, webhookURL string, p notification.Payload, mention string) error {
	if strings.TrimSpace(webhookURL) == "" {
		return apperr.Configuration("Slack webhook URL missing")
	}

	body, err := json.Marshal(map[string]string{"text": FormatSlackText(p, mention)})
	if err != nil {
		return fmt.Errorf("encode slack message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack delivery failed: %w", err)
	}
	return drain(resp, "slack delivery failed")
}
