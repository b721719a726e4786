// Package dedup suppresses repeated deliveries of the same logical
// message within a TTL window. Brokers may redeliver; the backend is
// at-most-once, so a second sighting of an id inside the window is
// dropped.
package dedup

import (
	"sync"
	"time"
)

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
}

// New builds a deduper; non-positive arguments fall back to a 10 minute
// window and 10000 tracked ids.
func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max)}
}

// ShouldProcess reports whether id has not been seen inside the TTL
// window and marks it seen. An empty id is always processed: messages
// without an identity cannot be deduplicated.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.seen[id]; ok && now.Before(expiry) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.sweepLocked(now)
	}
	return true
}

// sweepLocked drops expired entries; called only when the map outgrows
// max.
func (d *Deduper) sweepLocked(now time.Time) {
	for id, expiry := range d.seen {
		if now.After(expiry) {
			delete(d.seen, id)
		}
	}
}
