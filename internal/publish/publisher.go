// Package publish delivers finished documents to external consumers.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/loreline/loreline/internal/models"
)

// Event is what gets delivered when a job finishes a document.
type Event struct {
	JobID     string                     `json:"jobId"`
	OwnerID   string                     `json:"ownerId"`
	SourceRef string                     `json:"sourceRef"`
	Document  *models.StructuredDocument `json:"document"`
	Timestamp time.Time                  `json:"timestamp"`
}

// Publisher delivers events. Delivery is best effort, attempted once.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event. Used when no publish target is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Webhook POSTs each event as JSON to a configured endpoint.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhook creates a webhook publisher.
func NewWebhook(url string, client *http.Client, logger *slog.Logger) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Webhook{
		url:    url,
		client: client,
		logger: logger.With("component", "publish"),
	}
}

func (w *Webhook) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	w.logger.Debug("event delivered", "job_id", event.JobID, "status", resp.StatusCode)
	return nil
}
