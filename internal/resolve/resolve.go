// Package resolve orders the lookup identifiers of a record by
// reliability.
package resolve

import (
	"fmt"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

// Method identifies which lookup surface a candidate targets.
type Method string

const (
	ByID       Method = "id"
	ByUsername Method = "username"
	ByInvite   Method = "invite"
)

// Candidate is one identifier to try against the platform.
type Candidate struct {
	Method Method
	// Value is the numeric id as decimal text, the bare handle, or
	// the invite hash, depending on Method.
	Value string
}

func (c Candidate) String() string {
	switch c.Method {
	case ByID:
		return "ID:" + c.Value
	case ByUsername:
		return "@" + c.Value
	case ByInvite:
		return "+" + c.Value
	}
	return c.Value
}

// Order returns the record's lookup candidates, most reliable first:
// the numeric id when present, then usernames newest first, then
// non-expired invite links oldest first. Invite links are
// single-use-ish and may already be consumed, so all of them are kept
// as fallbacks; expired (struck-through) links are included only when
// the record has no other identifier at all.
//
// An empty result means the record cannot be checked ("no
// identifier").
func Order(rec *record.EntityRecord) []Candidate {
	var out []Candidate

	if rec.NumericID != 0 {
		out = append(out, Candidate{Method: ByID, Value: fmt.Sprintf("%d", rec.NumericID)})
	}

	// File order is append order, so newest handles come last.
	for i := len(rec.Usernames) - 1; i >= 0; i-- {
		if u := rec.Usernames[i]; !u.Struck {
			out = append(out, Candidate{Method: ByUsername, Value: u.Handle})
		}
	}

	live := rec.ActiveInvites()
	for _, l := range live {
		out = append(out, Candidate{Method: ByInvite, Value: l.Hash})
	}

	if len(out) == 0 {
		for _, l := range rec.Invites {
			out = append(out, Candidate{Method: ByInvite, Value: l.Hash})
		}
	}

	return out
}
