// Package webhook delivers the notice_published notification to an external URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"office-panel/internal/models"
)

const EventNoticePublished = "notice_published"

const DefaultTimeout = 2 * time.Second

// Payload is the JSON body posted to the webhook URL.
type Payload struct {
	Event   string `json:"event"`
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Notifier posts notifications with a bounded timeout and no retries.
type Notifier struct {
	url    string
	client *http.Client
}

// New returns a Notifier for url. An empty url yields a disabled notifier.
func New(url string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a target URL is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

// NoticePublished posts the notice to the webhook. Cancellation of ctx is ignored
// so a finished request cannot cut the attempt short; the client timeout bounds it.
func (n *Notifier) NoticePublished(ctx context.Context, notice *models.Notice) error {
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(Payload{
		Event:   EventNoticePublished,
		ID:      notice.ID,
		Title:   notice.Title,
		Content: notice.Content,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
