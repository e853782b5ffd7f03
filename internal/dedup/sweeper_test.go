package dedup

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSweepJob_EvictsExpired(t *testing.T) {
	cache := NewCache()
	cache.Record("stale", time.Now().Add(-3*time.Minute))
	cache.Record("fresh", time.Now())

	job := NewSweepJob(cache, 10*time.Millisecond, zerolog.Nop())
	job.Start()

	deadline := time.Now().Add(time.Second)
	for cache.Contains("stale") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	job.Stop()

	if cache.Contains("stale") {
		t.Error("expected stale entry to be evicted by sweep job")
	}
	if !cache.Contains("fresh") {
		t.Error("expected fresh entry to survive sweep job")
	}
}

func TestSweepJob_StopWaitsForCompletion(t *testing.T) {
	cache := NewCache()
	job := NewSweepJob(cache, 10*time.Millisecond, zerolog.Nop())
	job.Start()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return within a second")
	}
}
