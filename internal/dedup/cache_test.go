package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/opsrelay/gotify-relay/internal/metrics"
)

func TestCache_ContainsAndRecord(t *testing.T) {
	cache := NewCache()
	now := time.Now()

	if cache.Contains("HighCPU|node-1|firing") {
		t.Error("expected empty cache to not contain fingerprint")
	}

	cache.Record("HighCPU|node-1|firing", now)

	if !cache.Contains("HighCPU|node-1|firing") {
		t.Error("expected fingerprint to be present after record")
	}
	if cache.Contains("HighCPU|node-2|firing") {
		t.Error("expected different fingerprint to be absent")
	}
}

func TestCache_CheckAndRecord(t *testing.T) {
	cache := NewCache()
	now := time.Now()

	// First caller wins and records
	if !cache.CheckAndRecord("fp", now) {
		t.Error("expected first CheckAndRecord to report new")
	}
	if !cache.Contains("fp") {
		t.Error("expected fingerprint to be present after CheckAndRecord")
	}

	// Second caller observes the entry
	if cache.CheckAndRecord("fp", now) {
		t.Error("expected second CheckAndRecord to report duplicate")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}

func TestCache_CheckAndRecord_NoLazyExpiry(t *testing.T) {
	cache := NewCache()

	// A stale entry still counts as present until the sweep removes it;
	// CheckAndRecord must not expire on read.
	cache.Record("fp", time.Now().Add(-3*time.Minute))

	if cache.CheckAndRecord("fp", time.Now()) {
		t.Error("expected stale entry to still count as duplicate before sweep")
	}

	cache.Sweep(time.Now())

	if !cache.CheckAndRecord("fp", time.Now()) {
		t.Error("expected CheckAndRecord to report new after sweep")
	}
}

func TestCache_CheckAndRecord_Concurrent(t *testing.T) {
	cache := NewCache()
	now := time.Now()

	// Many goroutines race on the same fingerprint; exactly one may win.
	results := make(chan bool, 32)
	for i := 0; i < 32; i++ {
		go func() {
			results <- cache.CheckAndRecord("fp", now)
		}()
	}

	newCount := 0
	for i := 0; i < 32; i++ {
		if <-results {
			newCount++
		}
	}

	if newCount != 1 {
		t.Errorf("expected exactly 1 winner, got %d", newCount)
	}
}

func TestCache_SizeGaugeTracksMutations(t *testing.T) {
	cache := NewCache()
	base := time.Now()

	cache.Record("fp-1", base)
	cache.Record("fp-2", base.Add(-3*time.Minute))

	if got := testutil.ToFloat64(metrics.DedupCacheSize); got != 2 {
		t.Errorf("expected size gauge 2 after records, got %v", got)
	}

	cache.Sweep(base)

	if got := testutil.ToFloat64(metrics.DedupCacheSize); got != 1 {
		t.Errorf("expected size gauge 1 after sweep, got %v", got)
	}
}

func TestCache_RecordOverwrites(t *testing.T) {
	cache := NewCache()
	base := time.Now()

	cache.Record("fp", base.Add(-3*time.Minute))
	cache.Record("fp", base)

	if cache.Len() != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", cache.Len())
	}

	// The refreshed timestamp must win: a sweep past the original entry's
	// expiry leaves the entry in place.
	evicted := cache.Sweep(base.Add(time.Minute))
	if len(evicted) != 0 {
		t.Errorf("expected no evictions after overwrite, got %v", evicted)
	}
	if !cache.Contains("fp") {
		t.Error("expected refreshed entry to survive sweep")
	}
}

func TestCache_SweepTTLBoundary(t *testing.T) {
	cache := NewCache()
	base := time.Now()

	cache.Record("fp", base)

	// Present one second before expiry
	evicted := cache.Sweep(base.Add(119 * time.Second))
	if len(evicted) != 0 {
		t.Errorf("expected no evictions at 119s, got %v", evicted)
	}
	if !cache.Contains("fp") {
		t.Error("expected entry to be present at 119s")
	}

	// Absent one second after expiry
	evicted = cache.Sweep(base.Add(121 * time.Second))
	if len(evicted) != 1 || evicted[0] != "fp" {
		t.Errorf("expected [fp] evicted at 121s, got %v", evicted)
	}
	if cache.Contains("fp") {
		t.Error("expected entry to be absent after sweep at 121s")
	}
}

func TestCache_SweepEvictsAtExactTTL(t *testing.T) {
	cache := NewCache()
	base := time.Now()

	cache.Record("fp", base)

	evicted := cache.Sweep(base.Add(TTL))
	if len(evicted) != 1 {
		t.Errorf("expected eviction at exactly TTL, got %v", evicted)
	}
}

func TestCache_NoLazyExpiryOnRead(t *testing.T) {
	cache := NewCache()

	// An entry well past TTL still reports present until a sweep runs.
	// That one-sweep-interval staleness window is intended behavior.
	cache.Record("fp", time.Now().Add(-3*time.Minute))

	if !cache.Contains("fp") {
		t.Error("expected stale entry to still be present before sweep")
	}

	cache.Sweep(time.Now())

	if cache.Contains("fp") {
		t.Error("expected stale entry to be gone after sweep")
	}
}

func TestCache_SweepOnlyRemovesExpired(t *testing.T) {
	cache := NewCache()
	base := time.Now()

	cache.Record("old-1", base.Add(-3*time.Minute))
	cache.Record("old-2", base.Add(-5*time.Minute))
	cache.Record("fresh", base)

	evicted := cache.Sweep(base)
	if len(evicted) != 2 {
		t.Errorf("expected 2 evictions, got %d: %v", len(evicted), evicted)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry remaining, got %d", cache.Len())
	}
	if !cache.Contains("fresh") {
		t.Error("expected fresh entry to survive")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache()
	now := time.Now()

	done := make(chan struct{}, 20)
	for i := 0; i < 10; i++ {
		go func(i int) {
			cache.Record(fmt.Sprintf("fp-%d", i), now)
			done <- struct{}{}
		}(i)
		go func(i int) {
			cache.Contains(fmt.Sprintf("fp-%d", i))
			cache.Sweep(now)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	if cache.Len() != 10 {
		t.Errorf("expected 10 entries, got %d", cache.Len())
	}
}

func BenchmarkCache_ContainsRecord(b *testing.B) {
	cache := NewCache()
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Contains("HighCPU|node-1|firing")
		cache.Record("HighCPU|node-1|firing", now)
	}
}

func BenchmarkCache_Sweep(b *testing.B) {
	cache := NewCache()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		cache.Record(fmt.Sprintf("fp-%d", i), now)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Sweep(now)
	}
}
