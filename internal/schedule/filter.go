// Package schedule decides what gets checked and what gets persisted.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

// SkipReason explains why the check gate refused a record.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipByType   SkipReason = "wrong type"
	SkipByStatus SkipReason = "by status"
	SkipByTime   SkipReason = "recently checked"
)

// Gate holds the two independent filtering policies of a run: whether
// a record is queried at all (skip), and whether a performed check's
// result is written back (ignore, dry-run).
type Gate struct {
	// Kinds narrows the run to the requested entity kinds. Empty
	// means all. Applied before the check gate.
	Kinds map[record.Kind]bool

	// SkipAge skips records whose newest status entry is younger than
	// this. Zero disables the time gate.
	SkipAge time.Duration

	// SkipStatuses skips records whose current status is in the set.
	SkipStatuses map[record.Status]bool

	// RecheckUnknown exempts unknown from the time gate: unknown is
	// inherently provisional and is re-checked regardless of age.
	// Disabled by the --no-skip-unknown flag, which makes unknown
	// age out like any other status.
	RecheckUnknown bool

	// IgnoreStatuses suppresses the write-back when the *resulting*
	// status is in the set. The check still happens and is counted.
	IgnoreStatuses map[record.Status]bool

	// DryRun suppresses every write regardless of ignore settings.
	DryRun bool

	Now func() time.Time
}

// NewGate returns a gate with the default policy: every kind, no
// skips, unknown always re-checked.
func NewGate() *Gate {
	return &Gate{
		RecheckUnknown: true,
		Now:            time.Now,
	}
}

// WantKind applies the type filter.
func (g *Gate) WantKind(k record.Kind) bool {
	return len(g.Kinds) == 0 || g.Kinds[k]
}

// ShouldCheck applies the check gate to a record's current state. A
// record with no (dated) status history is always checked.
func (g *Gate) ShouldCheck(rec *record.EntityRecord) (bool, SkipReason, string) {
	cur, ok := rec.CurrentStatus()
	if !ok {
		return true, SkipNone, ""
	}

	if g.SkipStatuses[cur.Status] {
		return false, SkipByStatus, fmt.Sprintf("last status is '%s'", cur.Status)
	}

	timeGated := cur.Status != record.StatusUnknown || !g.RecheckUnknown
	if g.SkipAge > 0 && timeGated && !cur.Time.IsZero() {
		age := g.Now().Sub(cur.Time)
		if age < g.SkipAge {
			return false, SkipByTime, fmt.Sprintf("checked %dh %dm ago (status: %s)",
				int(age.Hours()), int(age.Minutes())%60, cur.Status)
		}
	}

	return true, SkipNone, ""
}

// ShouldPersist applies the persist gate to the resulting status.
func (g *Gate) ShouldPersist(result record.Status) bool {
	if g.DryRun {
		return false
	}
	return !g.IgnoreStatuses[result]
}

// Ignored reports whether the result is suppressed by the ignore set
// specifically (as opposed to dry-run), for the ignored-but-checked
// statistic.
func (g *Gate) Ignored(result record.Status) bool {
	return g.IgnoreStatuses[result]
}

// ParseDuration parses a skip-time value: plain seconds ("86400") or
// a multiplicative expression ("24*60*60").
func ParseDuration(expr string) (time.Duration, error) {
	total := int64(1)
	for _, part := range strings.Split(expr, "*") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time expression %q: %w", expr, err)
		}
		total *= n
	}
	return time.Duration(total) * time.Second, nil
}

// ParseStatusSet builds a status set from CLI values.
func ParseStatusSet(values []string) map[record.Status]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[record.Status]bool, len(values))
	for _, v := range values {
		set[record.Status(strings.TrimSpace(v))] = true
	}
	return set
}

// ParseKindSet builds a kind filter from CLI values; "all" (or an
// empty list) disables the filter.
func ParseKindSet(values []string) map[record.Kind]bool {
	set := make(map[record.Kind]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || v == "all" {
			return nil
		}
		set[record.ParseKind(v)] = true
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
