// Package status folds per-candidate lookup outcomes into one
// canonical result.
package status

import (
	"github.com/DarthJahus/telegram-fraud-network/internal/lookup"
	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

// Engine is the per-check state machine. Feed it the outcomes of the
// resolver's candidates in order; it settles on the first definitive
// result and never downgrades it. When every candidate is
// inconclusive (unknown or error), the engine keeps the last outcome
// observed, which preserves the most informative failure.
type Engine struct {
	result  lookup.Outcome
	settled bool
	seen    bool
}

// NewEngine creates an engine for one record check.
func NewEngine() *Engine {
	return &Engine{}
}

// Observe feeds one candidate's outcome. It returns true once the
// result is definitive and further candidates are pointless.
func (e *Engine) Observe(out lookup.Outcome) bool {
	if e.settled {
		return true
	}
	e.result = out
	e.seen = true
	if out.Status.Definitive() {
		e.settled = true
	}
	return e.settled
}

// Settled reports whether a definitive status has been reached.
func (e *Engine) Settled() bool { return e.settled }

// Result returns the canonical outcome for the check. With no
// observations at all the status is unknown.
func (e *Engine) Result() lookup.Outcome {
	if !e.seen {
		return lookup.Outcome{Status: record.StatusUnknown}
	}
	return e.result
}
