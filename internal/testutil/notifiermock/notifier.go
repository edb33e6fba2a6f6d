// Package notifiermock provides recording fakes for the notification senders.
package notifiermock

import (
	"context"
	"sync"

	"contentops-workflow/internal/domain/notification"
)

type Email struct {
	mu     sync.Mutex
	SendFn func(ctx context.Context, to string, p notification.Payload) error
	sent   []EmailCall
}

type EmailCall struct {
	To      string
	Payload notification.Payload
}

func (m *Email) SendEmail(ctx context.Context, to string, p notification.Payload) error {
	m.mu.Lock()
	m.sent = append(m.sent, EmailCall{To: to, Payload: p})
	fn := m.SendFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, to, p)
	}
	return nil
}

func (m *Email) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailCall(nil), m.sent...)
}

type Webhook struct {
	mu     sync.Mutex
	PostFn func(ctx context.Context, url string, p notification.Payload, mention string) error
	posted []WebhookCall
}

type WebhookCall struct {
	URL     string
	Payload notification.Payload
	Mention string
}

func (m *Webhook) PostWebhook(ctx context.Context, url string, p notification.Payload, mention string) error {
	m.mu.Lock()
	m.posted = append(m.posted, WebhookCall{URL: url, Payload: p, Mention: mention})
	fn := m.PostFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, url, p, mention)
	}
	return nil
}

func (m *Webhook) Calls() []WebhookCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WebhookCall(nil), m.posted...)
}
