// Package runner drives a batch of record checks end to end.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/DarthJahus/telegram-fraud-network/internal/change"
	"github.com/DarthJahus/telegram-fraud-network/internal/history"
	"github.com/DarthJahus/telegram-fraud-network/internal/ledger"
	"github.com/DarthJahus/telegram-fraud-network/internal/lookup"
	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/resolve"
	"github.com/DarthJahus/telegram-fraud-network/internal/schedule"
	"github.com/DarthJahus/telegram-fraud-network/internal/status"
)

// Result is one checked record's final outcome, kept for reporting.
type Result struct {
	Path       string        `json:"path"`
	Identifier string        `json:"identifier"`
	Status     record.Status `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Text       string        `json:"text,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Written    bool          `json:"written"`
}

// StatusChange records a transition between the stored status and
// this run's canonical result.
type StatusChange struct {
	Path string        `json:"path"`
	Old  record.Status `json:"old"`
	New  record.Status `json:"new"`
}

// Failure is a per-record recovered error (parse or write), reported
// by path so no record disappears silently.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report aggregates everything a run produced.
type Report struct {
	Stats   Stats    `json:"stats"`
	Results []Result `json:"results,omitempty"`

	Changes       []StatusChange `json:"status_changes,omitempty"`
	RecoveredIDs  []change.Event `json:"recovered_ids,omitempty"`
	Usernames     []change.Event `json:"usernames,omitempty"`
	Mismatches    []change.Event `json:"id_mismatches,omitempty"`
	ParseFailures []Failure      `json:"parse_failures,omitempty"`
	WriteFailures []Failure      `json:"write_failures,omitempty"`

	DryRun bool   `json:"dry_run,omitempty"`
	Fatal  string `json:"fatal,omitempty"`
}

// Options configures a Runner. Gate, Client and History are required;
// Ledger is optional.
type Options struct {
	Gate    *schedule.Gate
	Client  *lookup.Client
	History *history.Manager
	Ledger  *ledger.Ledger

	// WriteID enables persisting ids recovered via invite links.
	WriteID bool

	Log *slog.Logger
	Now func() time.Time
}

// Runner iterates a record set in stable order and runs the check
// pipeline sequentially for each record. All external calls go
// through the client's single pacing cursor; the only mutable state
// shared across records is that cursor and the aggregate statistics.
type Runner struct {
	gate    *schedule.Gate
	client  *lookup.Client
	hist    *history.Manager
	ledg    *ledger.Ledger
	writeID bool
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Runner.
func New(opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		gate:    opts.Gate,
		client:  opts.Client,
		hist:    opts.History,
		ledg:    opts.Ledger,
		writeID: opts.WriteID,
		log:     log,
		now:     now,
	}
}

// Run checks every record in paths. It returns the report in every
// case; the error is non-nil only for a fatal session failure or
// cancellation, after which the report carries the partial
// aggregates. Already-written records are never rolled back: patches
// are idempotent, so a partial run is safe to resume.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	rep := &Report{DryRun: r.gate.DryRun}

	runID := ""
	if r.ledg != nil {
		id, err := r.ledg.BeginRun(ctx, r.now())
		if err != nil {
			r.log.Warn("ledger unavailable for this run", "error", err)
		} else {
			runID = id
		}
	}

	var fatal error
	for _, path := range sorted {
		if err := r.checkOne(ctx, path, runID, rep); err != nil {
			rep.Fatal = err.Error()
			fatal = err
			break
		}
	}

	if r.ledg != nil && runID != "" {
		r.finishLedger(runID, rep)
	}
	return rep, fatal
}

// checkOne runs the pipeline for a single record. Only fatal session
// errors and cancellation propagate; everything else is recovered,
// counted and reported.
func (r *Runner) checkOne(ctx context.Context, path, runID string, rep *Report) error {
	stats := &rep.Stats

	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Error("cannot read record", "path", path, "error", err)
		stats.ParseErrors++
		rep.ParseFailures = append(rep.ParseFailures, Failure{Path: path, Reason: err.Error()})
		return nil
	}

	rec, perr := record.Parse(path, data)

	// Type filter narrows before any skip accounting.
	if rec != nil && !r.gate.WantKind(rec.Kind) {
		stats.Skipped++
		stats.SkippedType++
		return nil
	}

	if perr != nil {
		if record.IsNoIdentifier(perr) {
			r.log.Info("skipped: no identifier", "path", path)
			stats.Skipped++
			stats.SkippedNoIdentifier++
		} else {
			r.log.Warn("unparsable record", "path", path, "error", perr)
			stats.ParseErrors++
			rep.ParseFailures = append(rep.ParseFailures, Failure{Path: path, Reason: perr.Error()})
		}
		return nil
	}

	if ok, reason, detail := r.gate.ShouldCheck(rec); !ok {
		r.log.Info("skipped", "path", path, "reason", detail)
		stats.Skipped++
		switch reason {
		case schedule.SkipByTime:
			stats.SkippedTime++
		case schedule.SkipByStatus:
			stats.SkippedStatus++
		}
		return nil
	}

	prev, hadPrev := rec.CurrentStatus()

	candidates := resolve.Order(rec)
	eng := status.NewEngine()
	var display string
	for _, cand := range candidates {
		r.log.Debug("querying", "path", path, "candidate", cand.String())
		out, err := r.client.Query(ctx, cand, rec.NumericID)
		if err != nil {
			return err
		}
		display = cand.String()
		if eng.Observe(out) {
			break
		}
	}

	out := eng.Result()
	stats.AddOutcome(out.Status)
	if out.Status.Definitive() {
		stats.AddMethod(out.Method)
	}
	r.log.Info("checked", "path", path, "identifier", display, "status", out.Status)

	events := change.Detect(rec, out)

	ignored := r.gate.Ignored(out.Status)
	if ignored {
		stats.Ignored++
	}

	written := false
	if r.gate.ShouldPersist(out.Status) {
		r.hist.Append(rec, record.StatusEntry{
			Status: out.Status,
			Time:   r.now(),
			Reason: out.Reason,
			Text:   out.Text,
		})
		r.applyEvents(rec, events)

		if err := os.WriteFile(path, rec.Patch(), 0o644); err != nil {
			r.log.Error("write failed", "path", path, "error", err)
			stats.WriteErrors++
			rep.WriteFailures = append(rep.WriteFailures, Failure{Path: path, Reason: err.Error()})
		} else {
			written = true
		}
	}

	if !ignored && (!hadPrev || prev.Status != out.Status) {
		old := record.Status("")
		if hadPrev {
			old = prev.Status
		}
		rep.Changes = append(rep.Changes, StatusChange{Path: path, Old: old, New: out.Status})
	}

	r.collectEvents(rep, events)
	rep.Results = append(rep.Results, Result{
		Path:       path,
		Identifier: display,
		Status:     out.Status,
		Reason:     out.Reason,
		Text:       out.Text,
		Detail:     out.Raw,
		Written:    written,
	})

	if r.ledg != nil && runID != "" {
		err := r.ledg.RecordCheck(ctx, runID, path, string(out.Status), string(out.Method), out.Raw, r.now())
		if err != nil {
			r.log.Warn("ledger write failed", "path", path, "error", err)
			stats.WriteErrors++
		}
	}
	return nil
}

// applyEvents applies the gated update requests to the record before
// it is patched. Only invite-recovered ids are ever written:
// username-recovered ids are reported as unreliable instead.
func (r *Runner) applyEvents(rec *record.EntityRecord, events []change.Event) {
	for i := range events {
		ev := &events[i]
		if ev.Type != change.IDRecovered {
			continue
		}
		if r.writeID && ev.Method == resolve.ByInvite {
			rec.SetNumericID(ev.NewID)
			ev.Applied = true
		}
	}
}

func (r *Runner) collectEvents(rep *Report, events []change.Event) {
	for _, ev := range events {
		switch ev.Type {
		case change.IDRecovered:
			rep.RecoveredIDs = append(rep.RecoveredIDs, ev)
		case change.IDMismatch:
			rep.Mismatches = append(rep.Mismatches, ev)
		case change.UsernameDiscovered, change.UsernameChanged:
			rep.Usernames = append(rep.Usernames, ev)
		}
	}
}

// finishLedger stamps the run row; failures only log.
func (r *Runner) finishLedger(runID string, rep *Report) {
	// A fatal session error may have canceled the context; the ledger
	// flush still has to happen.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.ledg.FinishRun(ctx, runID, r.now(), ledger.RunTotals{
		Total:      rep.Stats.Total,
		Active:     rep.Stats.Active,
		Banned:     rep.Stats.Banned,
		Deleted:    rep.Stats.Deleted,
		IDMismatch: rep.Stats.IDMismatch,
		Unknown:    rep.Stats.Unknown,
		Error:      rep.Stats.Error,
		Skipped:    rep.Stats.Skipped,
		Ignored:    rep.Stats.Ignored,
		Fatal:      rep.Fatal,
	})
	if err != nil {
		r.log.Warn("ledger finish failed", "error", err)
	}
}

// IsFatal reports whether the run error was a session failure rather
// than a cancellation.
func IsFatal(err error) bool {
	return lookup.IsSessionError(err) && !errors.Is(err, context.Canceled)
}
