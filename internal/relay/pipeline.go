// Package relay drives alert batches through dedup check and notification
// dispatch.
package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/opsrelay/gotify-relay/internal/alert"
	"github.com/opsrelay/gotify-relay/internal/dedup"
	"github.com/opsrelay/gotify-relay/internal/metrics"
)

// Notifier dispatches one push notification for an alert.
type Notifier interface {
	Notify(ctx context.Context, a alert.Alert, fingerprint string) error
}

// Pipeline processes alert batches: each alert is fingerprinted, checked
// against the dedup cache, and dispatched if it has not been notified
// within the TTL window.
type Pipeline struct {
	cache    *dedup.Cache
	notifier Notifier
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline with the provided dependencies.
func NewPipeline(cache *dedup.Cache, notifier Notifier, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cache:    cache,
		notifier: notifier,
		logger:   logger.With().Str("component", "relay").Logger(),
	}
}

// HandleBatch processes all alerts in a batch concurrently. Alert tasks
// are independent: one dispatch failing neither cancels nor affects its
// siblings, each of which runs to its own completion. Duplicates are
// skipped without any cache mutation. For new alerts the fingerprint is
// recorded at dispatch initiation, so a failed delivery still counts as
// sent for the rest of the TTL window; Alertmanager's upstream retry is
// the recovery path. The batch fails as a whole if any dispatch fails,
// with the first error winning.
func (p *Pipeline) HandleBatch(ctx context.Context, alerts []alert.Alert) error {
	var g errgroup.Group

	for _, a := range alerts {
		g.Go(func() error {
			return p.processAlert(ctx, a)
		})
	}

	return g.Wait()
}

func (p *Pipeline) processAlert(ctx context.Context, a alert.Alert) error {
	fp := alert.Fingerprint(a)
	metrics.RecordAlertReceived(a.Status)

	// Check and record are one atomic step: two identical alerts racing
	// through the same batch cannot both observe absence.
	if !p.cache.CheckAndRecord(fp, time.Now()) {
		metrics.RecordAlertSkipped()
		p.logger.Info().
			Str("fingerprint", fp).
			Msg("duplicate alert skipped")
		return nil
	}

	start := time.Now()
	if err := p.notifier.Notify(ctx, a, fp); err != nil {
		metrics.RecordNotificationSent("failure")
		p.logger.Error().
			Err(err).
			Str("fingerprint", fp).
			Msg("failed to dispatch notification")
		return err
	}

	metrics.RecordNotificationSent("success")
	metrics.RecordNotificationLatency(time.Since(start).Seconds())
	p.logger.Info().
		Str("fingerprint", fp).
		Str("status", a.Status).
		Msg("alert forwarded")

	return nil
}
