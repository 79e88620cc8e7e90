package views

import (
	"sync"
	"time"
)

type seenEntry struct {
	id string
	ts time.Time
}

// Deduper remembers recently processed event IDs so that redelivered
// messages do not count a view twice. Bounded by capacity and ttl.
type Deduper struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	queue    []seenEntry
	capacity int
	ttl      time.Duration
}

// NewDeduper creates a deduper with the provided capacity and ttl.
func NewDeduper(capacity int, ttl time.Duration) *Deduper {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Deduper{
		seen:     make(map[string]time.Time, capacity),
		queue:    make([]seenEntry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Seen reports whether the event ID was recorded inside the ttl window.
// It does not record the ID; Remember does that.
func (d *Deduper) Seen(id string) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	ts, ok := d.seen[id]
	return ok && now.Sub(ts) <= d.ttl
}

// Remember records a processed event ID, evicting expired entries and the
// oldest ones once over capacity.
func (d *Deduper) Remember(id string) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[id] = now
	d.queue = append(d.queue, seenEntry{id: id, ts: now})

	cutoff := now.Add(-d.ttl)
	for len(d.queue) > 0 && (len(d.seen) > d.capacity || d.queue[0].ts.Before(cutoff)) {
		oldest := d.queue[0]
		d.queue = d.queue[1:]

		// Keep the entry when it was refreshed after this queue record.
		if ts, ok := d.seen[oldest.id]; ok && ts == oldest.ts {
			delete(d.seen, oldest.id)
		}
	}
}
