// Package notify delivers settlement events to configured webhook
// endpoints. This is a notification channel only; the balance credit is
// already durable before any delivery is attempted.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clipzone/clipzone/internal/config"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/internal/metrics"
	"github.com/clipzone/clipzone/pkg/models"
)

const maxAttempts = 3

// Notifier delivers HMAC-signed settlement webhooks
type Notifier struct {
	client    *http.Client
	endpoints []config.WebhookEndpoint
	logger    *logging.Logger
}

// New creates a notifier for the configured endpoints
func New(endpoints []config.WebhookEndpoint, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Notifier{
		client:    &http.Client{Timeout: 30 * time.Second},
		endpoints: endpoints,
		logger:    logger,
	}
}

// Notify delivers a settlement event to every configured endpoint.
// Returns the first delivery error so the queue can requeue the event.
func (n *Notifier) Notify(ctx context.Context, event models.SettlementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement event: %w", err)
	}

	var firstErr error
	for _, endpoint := range n.endpoints {
		if err := n.deliver(ctx, endpoint, payload); err != nil {
			n.logger.WithClipID(event.ClipID).ErrorWithErr("Webhook delivery failed", err)
			metrics.WebhookDeliveriesTotal.WithLabelValues("failure").Inc()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.WebhookDeliveriesTotal.WithLabelValues("success").Inc()
	}

	return firstErr
}

func (n *Notifier) deliver(ctx context.Context, endpoint config.WebhookEndpoint, payload []byte) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "ClipZone-Webhook/1.0")
		req.Header.Set("X-Webhook-Event", "clip.settled")
		req.Header.Set("X-Webhook-Signature", Sign(endpoint.Secret, payload))

		resp, err := n.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	return fmt.Errorf("delivery to %s failed after %d attempts: %w", endpoint.URL, maxAttempts, lastErr)
}

// Sign computes the hex HMAC-SHA256 signature for a webhook payload
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
