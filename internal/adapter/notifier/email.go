// Package notifier delivers workflow notifications to external providers.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/logging"

	"github.com/rs/zerolog"
)

const userAgent = "contentops-workflow/1.0"

type EmailOptions struct {
	APIKey  string
	APIURL  string
	From    string
	Timeout time.Duration
}

// EmailSender posts to a Resend-compatible mail API. Without an API key it
// only logs the message and reports a simulated success.
type EmailSender struct {
	opts   EmailOptions
	client *http.Client
	log    zerolog.Logger
}

func NewEmailSender(opts EmailOptions) *EmailSender {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &EmailSender{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    logging.Component("notifier.email"),
	}
}

func (s *EmailSender) Simulated() bool { return strings.TrimSpace(s.opts.APIKey) == "" }

type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *EmailSender) SendEmail(ctx context.Context, to string, p notification.Payload) error {
	if s.Simulated() {
		s.log.Info().Str("to", to).Str("subject", p.Subject).Msg("email queued (simulated)")
		return nil
	}

	body, err := json.Marshal(emailRequest{
		From:    s.opts.From,
		To:      to,
		Subject: p.Subject,
		HTML:    renderEmailHTML(p),
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email delivery failed: %w", err)
	}
	return drain(resp, "email delivery failed")
}

func renderEmailHTML(p notification.Payload) string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(p.Body))
	b.WriteString("</p>")
	if p.ActionURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Open request</a></p>`, html.EscapeString(p.ActionURL))
	}
	return b.String()
}

// drain turns a non-2xx response into an error carrying a bounded slice of the body.
func drain(resp *http.Response, prefix string) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s: %d %s", prefix, resp.StatusCode, msg)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
