package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Pusher is the external real-time push collaborator (admin dashboards и т.п.).
type Pusher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// WebhookPusher POSTs events to a configured endpoint. Best-effort by
// contract: callers treat errors as log-only.
type WebhookPusher struct {
	url    string
	client *http.Client
}

func NewWebhookPusher(url string, timeout time.Duration) *WebhookPusher {
	return &WebhookPusher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *WebhookPusher) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"channel": channel,
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("push: failed to marshal event %q: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: failed to deliver event %q: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push: endpoint returned status %d for event %q", resp.StatusCode, event)
	}
	return nil
}

// NopPusher - заглушка, когда внешний push не сконфигурирован.
type NopPusher struct{}

func (NopPusher) Publish(context.Context, string, string, any) error { return nil }
