// Package history maintains the bounded status history of a record.
package history

import (
	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

// DefaultCap is the default maximum number of retained status entries.
const DefaultCap = 10

// Manager appends status entries to records under a fixed length
// bound.
//
// History is ordered newest first. When an append would exceed the
// cap, the entry at the middle index of the existing history is
// evicted rather than the oldest: the recent trend and the single
// first-observed status are both always retained (thinning).
type Manager struct {
	cap int
}

// NewManager creates a history manager with the given cap. A cap of
// zero or less falls back to DefaultCap.
func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Manager{cap: capacity}
}

// Cap returns the configured history bound.
func (m *Manager) Cap() int { return m.cap }

// Append prepends entry to the record's history, evicting the middle
// element first when the history is already full. Appending the same
// status as the current newest entry is permitted; deduplication is
// deliberately not performed.
func (m *Manager) Append(rec *record.EntityRecord, entry record.StatusEntry) {
	entries := rec.History
	if len(entries) >= m.cap {
		mid := len(entries) / 2
		entries = append(entries[:mid:mid], entries[mid+1:]...)
		// Re-evict in case the cap shrank between runs.
		for len(entries) >= m.cap {
			entries = append(entries[:len(entries)/2], entries[len(entries)/2+1:]...)
		}
	}
	rec.SetHistory(append([]record.StatusEntry{entry}, entries...))
}

// Current returns the record's newest status, or ok=false for an
// empty history.
func (m *Manager) Current(rec *record.EntityRecord) (record.StatusEntry, bool) {
	return rec.CurrentStatus()
}
