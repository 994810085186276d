// Package change diffs a check result against a record's last known
// state.
package change

import (
	"golang.org/x/text/cases"

	"github.com/DarthJahus/telegram-fraud-network/internal/lookup"
	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/resolve"
)

// Type enumerates the independent change notifications. More than one
// may fire for a single check.
type Type string

const (
	// IDRecovered fires when a record without a numeric id resolved
	// to one via a username or invite lookup.
	IDRecovered Type = "id_recovered"

	// IDMismatch fires when a lookup resolved a recorded identifier
	// to a different underlying entity. The stored id is never
	// overwritten automatically; which side is authoritative is a
	// human call.
	IDMismatch Type = "id_mismatch"

	// UsernameDiscovered fires when a resolvable handle exists now
	// but the record had none.
	UsernameDiscovered Type = "username_discovered"

	// UsernameChanged fires when the resolvable handle differs from
	// the record's current stored handle.
	UsernameChanged Type = "username_changed"
)

// Event is one detected change.
type Event struct {
	Type   Type
	Path   string
	Method resolve.Method

	// OldID/NewID for the id events; OldUsername/NewUsername for the
	// username events.
	OldID       int64
	NewID       int64
	OldUsername string
	NewUsername string

	// Applied is set by the orchestrator when the update request was
	// actually written to the record (id recovery with id-writing
	// enabled).
	Applied bool
}

// Detect compares this run's canonical outcome against the record as
// it was loaded. The notifications are independent and
// order-insensitive.
func Detect(rec *record.EntityRecord, out lookup.Outcome) []Event {
	var events []Event
	fold := cases.Fold()

	if out.ResolvedID != 0 && rec.NumericID == 0 {
		events = append(events, Event{
			Type:   IDRecovered,
			Path:   rec.Path,
			Method: out.Method,
			NewID:  out.ResolvedID,
		})
	}

	if out.Status == record.StatusIDMismatch {
		events = append(events, Event{
			Type:   IDMismatch,
			Path:   rec.Path,
			Method: out.Method,
			OldID:  rec.NumericID,
			NewID:  out.ResolvedID,
		})
	}

	if out.ResolvedUsername != "" {
		stored, ok := rec.CurrentUsername()
		switch {
		case !ok:
			events = append(events, Event{
				Type:        UsernameDiscovered,
				Path:        rec.Path,
				Method:      out.Method,
				NewUsername: out.ResolvedUsername,
			})
		case fold.String(stored.Handle) != fold.String(out.ResolvedUsername):
			events = append(events, Event{
				Type:        UsernameChanged,
				Path:        rec.Path,
				Method:      out.Method,
				OldUsername: stored.Handle,
				NewUsername: out.ResolvedUsername,
			})
		}
	}

	return events
}
