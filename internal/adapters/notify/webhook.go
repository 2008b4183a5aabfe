package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/jobs"
)

// Default webhook configuration constants.
const (
	defaultWebhookTimeout = 15 * time.Second
)

// Webhook implements Notifier against a Discord-compatible webhook URL.
type Webhook struct {
	url    string
	client *http.Client
}

// WebhookOption applies a configuration option to the Webhook.
type WebhookOption func(*Webhook)

// WithWebhookHTTPClient substitutes the underlying http.Client.
func WithWebhookHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// NewWebhook creates a notifier posting to url.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// webhookDTO mirrors the webhook's expected body.
type webhookDTO struct {
	Content string `json:"content"`
}

// Report posts a compact per-category summary of the round's changes.
func (w *Webhook) Report(ctx context.Context, diffs []jobs.CategoryDiff) error {
	if len(diffs) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Leaderboard changes detected:\n")
	for _, cd := range diffs {
		var newCount, improved, worsened, removed, pushedOff int
		for _, md := range cd.Maps {
			newCount += len(md.Diff.New)
			improved += len(md.Diff.Improved)
			worsened += len(md.Diff.Worsened)
			removed += len(md.Diff.Removed)
			pushedOff += len(md.Diff.PushedOff)
		}
		fmt.Fprintf(&b, "- **%s**: %d maps changed (%d new, %d improved, %d worsened, %d removed, %d pushed off)\n",
			cd.Category, len(cd.Maps), newCount, improved, worsened, removed, pushedOff)
	}
	return w.post(ctx, b.String())
}

// Alert posts an operational alert message.
func (w *Webhook) Alert(ctx context.Context, message string) error {
	return w.post(ctx, ":warning: "+message)
}

func (w *Webhook) post(ctx context.Context, content string) error {
	body, err := json.Marshal(webhookDTO{Content: content})
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post webhook: unexpected status %s", resp.Status)
	}
	return nil
}
