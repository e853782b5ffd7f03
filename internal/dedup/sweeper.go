package dedup

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/opsrelay/gotify-relay/internal/metrics"
)

// SweepJob periodically evicts expired fingerprints from a Cache.
type SweepJob struct {
	cache    *Cache
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweepJob creates a sweep job that runs at the specified interval.
func NewSweepJob(cache *Cache, interval time.Duration, logger zerolog.Logger) *SweepJob {
	return &SweepJob{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("component", "dedup-sweep").Logger(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the sweep job in a background goroutine.
func (j *SweepJob) Start() {
	go j.run()
}

// Stop signals the sweep job to stop and waits for it to finish.
func (j *SweepJob) Stop() {
	close(j.stopCh)
	<-j.doneCh
}

func (j *SweepJob) run() {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopCh:
			j.logger.Info().Msg("sweep job stopped")
			return
		case <-ticker.C:
			j.runSweep()
		}
	}
}

func (j *SweepJob) runSweep() {
	evicted := j.cache.Sweep(time.Now())
	if len(evicted) == 0 {
		return
	}

	for _, fp := range evicted {
		metrics.RecordCacheEviction()
		j.logger.Debug().
			Str("fingerprint", fp).
			Msg("evicted expired fingerprint")
	}

	j.logger.Info().
		Int("evictedCount", len(evicted)).
		Msg("swept expired fingerprints")
}
