// Package webhook provides the HTTP handler for ingesting Alertmanager
// alert batches.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/opsrelay/gotify-relay/internal/alert"
	"github.com/opsrelay/gotify-relay/internal/metrics"
)

// ErrInvalidPayload is the exact message returned when the alerts field is
// missing or not an array. Alertmanager operators match on this string.
const ErrInvalidPayload = "Invalid payload: alerts missing or not an array"

// BatchProcessor handles a validated batch of alerts.
type BatchProcessor interface {
	HandleBatch(ctx context.Context, alerts []alert.Alert) error
}

// Payload represents the webhook payload from Alertmanager. Only the
// alerts field matters to the relay; group metadata is ignored.
type Payload struct {
	Alerts json.RawMessage `json:"alerts"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Config holds webhook settings.
type Config struct {
	// Secret enables HMAC signature verification when non-empty.
	Secret string
}

// Handler handles webhook requests for alert ingestion.
type Handler struct {
	pipeline BatchProcessor
	logger   zerolog.Logger
	config   Config
}

// NewHandler creates a new webhook handler with the provided dependencies.
func NewHandler(pipeline BatchProcessor, logger zerolog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		logger:   logger.With().Str("component", "webhook").Logger(),
	}
}

// NewHandlerWithConfig creates a webhook handler with HMAC configuration.
func NewHandlerWithConfig(pipeline BatchProcessor, logger zerolog.Logger, config Config) *Handler {
	h := NewHandler(pipeline, logger)
	h.config = config
	return h
}

// RegisterRoutes registers the alert webhook route on the provided router.
// HMAC signature verification is applied if a secret is configured.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	if h.config.Secret != "" {
		alerts := router.Group("/")
		alerts.Use(HMACMiddleware(DefaultHMACConfig(h.config.Secret)))
		alerts.POST("/alert", h.Alert)
		h.logger.Info().Msg("webhook HMAC verification enabled")
	} else {
		router.POST("/alert", h.Alert)
	}
}

// Alert handles POST /alert.
func (h *Handler) Alert(c *gin.Context) {
	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.rejectInvalid(c, err.Error())
		return
	}

	alerts, ok := decodeAlerts(payload.Alerts)
	if !ok {
		h.rejectInvalid(c, "alerts field is not an array")
		return
	}

	h.logger.Info().
		Int("alertCount", len(alerts)).
		Msg("processing alert batch")

	// In-flight dispatches are not tied to the inbound request: a caller
	// disconnect must not cancel notifications already underway.
	ctx := context.WithoutCancel(c.Request.Context())

	if err := h.pipeline.HandleBatch(ctx, alerts); err != nil {
		metrics.RecordWebhookRequest("error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	metrics.RecordWebhookRequest("ok")
	c.String(http.StatusOK, "Alerts forwarded to Gotify")
}

func (h *Handler) rejectInvalid(c *gin.Context, reason string) {
	metrics.RecordWebhookRequest("invalid")
	h.logger.Warn().
		Str("reason", reason).
		Msg("rejected alert payload")
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrInvalidPayload})
}

// decodeAlerts unmarshals the raw alerts field, requiring it to be a JSON
// array. A missing or null field is treated the same as a non-array value.
func decodeAlerts(raw json.RawMessage) ([]alert.Alert, bool) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}

	var alerts []alert.Alert
	if err := json.Unmarshal(raw, &alerts); err != nil {
		return nil, false
	}
	return alerts, true
}
