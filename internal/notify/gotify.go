// Package notify delivers push notifications to a Gotify server.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsrelay/gotify-relay/internal/alert"
)

// ErrNotConfigured is returned when no Gotify URL is configured.
var ErrNotConfigured = errors.New("gotify URL is not configured")

// DeliveryError is returned when the Gotify server is unreachable or
// rejects a push request.
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gotify delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("gotify delivery failed: unexpected status %d", e.StatusCode)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Message is the push payload sent to Gotify.
type Message struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Gotify priorities for the two alert states.
const (
	PriorityFiring   = 5
	PriorityResolved = 1
)

// BuildMessage formats an alert into a Gotify push message.
// The description annotation wins over the summary annotation; when both
// are empty the literal "No description" is used. A missing alertname
// label falls back to the literal "Alert".
func BuildMessage(a alert.Alert) Message {
	title := "✅ Resolved"
	priority := PriorityResolved
	if a.Status == alert.StatusFiring {
		title = "🚨 New alert"
		priority = PriorityFiring
	}

	name := a.Labels["alertname"]
	if name == "" {
		name = "Alert"
	}

	body := a.Annotations["description"]
	if body == "" {
		body = a.Annotations["summary"]
	}
	if body == "" {
		body = "No description"
	}

	return Message{
		Title:    title,
		Message:  name + ": " + body,
		Priority: priority,
	}
}

// Client pushes notifications to a single configured Gotify endpoint.
type Client struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// NewClient creates a Gotify client for the given push URL.
// An empty URL is allowed at construction time; Notify fails with
// ErrNotConfigured before attempting any network I/O.
func NewClient(url string, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		client: &http.Client{},
		logger: logger.With().Str("component", "gotify").Logger(),
	}
}

// Notify formats and pushes one notification for the given alert.
// There is no retry: a failed delivery surfaces as a DeliveryError and the
// alert is lost from this process's perspective (Alertmanager retries the
// whole webhook upstream).
func (c *Client) Notify(ctx context.Context, a alert.Alert, fingerprint string) error {
	if c.url == "" {
		return ErrNotConfigured
	}

	msg := BuildMessage(a)
	body, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("fingerprint", fingerprint).
			Msg("gotify request failed")
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("fingerprint", fingerprint).
			Msg("gotify rejected notification")
		return &DeliveryError{StatusCode: resp.StatusCode}
	}

	c.logger.Debug().
		Str("fingerprint", fingerprint).
		Str("title", msg.Title).
		Int("priority", msg.Priority).
		Dur("latency", time.Since(start)).
		Msg("notification delivered")

	return nil
}
