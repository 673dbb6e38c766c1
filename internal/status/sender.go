// Package status delivers best-effort textual status updates over a
// Discord-compatible webhook.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/config"
)

// SendResult indicates the outcome of a single delivery attempt.
type SendResult int

const (
	// SendOK indicates successful delivery.
	SendOK SendResult = iota
	// SendRetryable indicates a transient error (429, network error).
	SendRetryable
	// SendFatal indicates a permanent error (invalid webhook, auth failure).
	SendFatal
)

// defaultRetryDelay is used for retryable failures without a Retry-After.
const defaultRetryDelay = 1 * time.Second

// maxRetryDelay caps how long Send waits before its single retry. Status
// delivery is best-effort; callers must never be stalled for long.
const maxRetryDelay = 5 * time.Second

// payload is the webhook body.
type payload struct {
	Content string `json:"content"`
}

// WebhookSender posts status messages to a webhook URL.
// It implements chat.StatusSender.
type WebhookSender struct {
	webhookURL config.Secret
	client     *http.Client
	logger     *slog.Logger
}

// SenderOption configures a WebhookSender.
type SenderOption func(*WebhookSender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *WebhookSender) { s.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SenderOption {
	return func(s *WebhookSender) { s.logger = logger }
}

// NewWebhookSender creates a webhook sender. The URL is held as a Secret
// and appears as [REDACTED] in logs.
func NewWebhookSender(webhookURL config.Secret, opts ...SenderOption) *WebhookSender {
	s := &WebhookSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts content to the webhook. A retryable failure is retried once
// after the server-suggested delay (capped); anything else surfaces as an
// error for the caller to log and ignore.
func (s *WebhookSender) Send(ctx context.Context, content string) error {
	result, retryAfter := s.post(ctx, content)
	switch result {
	case SendOK:
		return nil
	case SendFatal:
		return fmt.Errorf("webhook delivery failed permanently")
	}

	delay := retryAfter
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if result, _ = s.post(ctx, content); result != SendOK {
		return fmt.Errorf("webhook delivery failed after retry")
	}
	return nil
}

// post performs one delivery attempt.
func (s *WebhookSender) post(ctx context.Context, content string) (SendResult, time.Duration) {
	if s.webhookURL.IsEmpty() {
		return SendFatal, 0
	}

	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return SendFatal, 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL.Value(), bytes.NewReader(body))
	if err != nil {
		return SendFatal, 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("webhook request failed", "error", err)
		return SendRetryable, 0
	}
	defer resp.Body.Close()

	// Drain body to allow connection reuse.
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return SendOK, 0

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		s.logger.Warn("webhook rate limited", "retry_after", retryAfter)
		return SendRetryable, retryAfter

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// 4xx (except 429) means a misconfigured or revoked webhook;
		// retrying cannot recover.
		s.logger.Error("webhook client error",
			"status", resp.StatusCode,
			"webhook_url", s.webhookURL, // logs as [REDACTED]
		)
		return SendFatal, 0

	default:
		s.logger.Warn("webhook server error", "status", resp.StatusCode)
		return SendRetryable, 0
	}
}

// parseRetryAfter parses a Retry-After header value in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
