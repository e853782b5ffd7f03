// Package dedup provides the fingerprint deduplication cache and its
// background sweep job.
package dedup

import (
	"sync"
	"time"

	"github.com/opsrelay/gotify-relay/internal/metrics"
)

const (
	// TTL is how long a fingerprint counts as recently notified.
	TTL = 2 * time.Minute

	// SweepInterval is how often the background sweep evicts expired entries.
	SweepInterval = time.Second
)

// Cache maps alert fingerprints to the instant their notification was last
// dispatched. It is a sent-notification ledger, not a general alert store:
// a fingerprint being present means a notification for that identity went
// out within the last TTL window.
type Cache struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewCache creates an empty deduplication cache.
func NewCache() *Cache {
	return &Cache{
		lastSeen: make(map[string]time.Time),
	}
}

// Contains reports whether a fingerprint is currently in the cache.
// There is no lazy expiry on read: an entry older than TTL still reports
// present until the next sweep removes it. The at-most-one-interval
// staleness window is accepted for the simpler read path.
func (c *Cache) Contains(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.lastSeen[fingerprint]
	return ok
}

// CheckAndRecord atomically checks whether a fingerprint is present and
// records it if not. Returns true if the fingerprint was newly recorded
// (the alert should be dispatched), false if it was already present
// (duplicate). Like Contains, there is no lazy expiry: a stale entry still
// counts as present until the sweep removes it.
func (c *Cache) CheckAndRecord(fingerprint string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lastSeen[fingerprint]; ok {
		return false
	}

	c.lastSeen[fingerprint] = now
	metrics.SetCacheSize(float64(len(c.lastSeen)))
	return true
}

// Record inserts or overwrites the last-seen instant for a fingerprint.
func (c *Cache) Record(fingerprint string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen[fingerprint] = now
	metrics.SetCacheSize(float64(len(c.lastSeen)))
}

// Sweep removes every entry whose age is at least TTL and returns the
// evicted fingerprints so callers can log and count them. The size gauge
// is updated under the same lock as the removal, keeping it exact.
func (c *Cache) Sweep(now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var evicted []string
	for fp, seen := range c.lastSeen {
		if now.Sub(seen) >= TTL {
			delete(c.lastSeen, fp)
			evicted = append(evicted, fp)
		}
	}
	metrics.SetCacheSize(float64(len(c.lastSeen)))
	return evicted
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lastSeen)
}
