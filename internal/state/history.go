package state

import (
	"sync"
	"time"
)

// Change is one event-log record: what changed and both snapshots.
// Read-only history; never replayed into the entity graph.
type Change struct {
	At         time.Time `json:"at"`
	EntityType string    `json:"entityType"`
	EntityID   int64     `json:"entityId"`
	EventType  EventType `json:"eventType"`
	Old        any       `json:"old,omitempty"`
	New        any       `json:"new,omitempty"`
}

// history is a bounded FIFO of changes. Append and trim must be serialized,
// so it carries its own mutex rather than riding the entity collections.
type history struct {
	mu      sync.Mutex
	cap     int
	entries []Change
}

func newHistory(capacity int) *history {
	return &history{cap: capacity}
}

func (h *history) append(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, c)
	if len(h.entries) > h.cap {
		// Trim oldest; copy so the backing array does not pin trimmed entries.
		trimmed := make([]Change, h.cap)
		copy(trimmed, h.entries[len(h.entries)-h.cap:])
		h.entries = trimmed
	}
}

func (h *history) list() []Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Change, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *history) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
