package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.Bold)
	activeColor  = color.New(color.FgGreen)
	bannedColor  = color.New(color.FgRed)
	deletedColor = color.New(color.FgHiBlack)
	unknownColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	noteColor    = color.New(color.FgCyan)
)

const rule = "------------------------------------------------------------"

// Render writes the human-readable run report: the aggregate summary
// first, then the attention sections (changes, mismatches, recovered
// ids, usernames, failures).
func Render(w io.Writer, rep *Report) {
	renderStats(w, rep)

	if rep.DryRun {
		renderDryRun(w, rep)
	}
	renderChanges(w, rep)
	renderMismatches(w, rep)
	renderRecoveredIDs(w, rep)
	renderUsernames(w, rep)
	renderFailures(w, rep)

	if rep.Fatal != "" {
		fmt.Fprintln(w)
		errorColor.Fprintf(w, "Run aborted: %s\n", rep.Fatal)
		fmt.Fprintln(w, "Partial results above; completed records were written and are safe to resume from.")
	}
}

func renderStats(w io.Writer, rep *Report) {
	s := rep.Stats
	fmt.Fprintln(w, rule)
	headerColor.Fprintln(w, "RESULTS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total checked:  %d\n", s.Total)
	activeColor.Fprintf(w, "  Active:       %d\n", s.Active)
	bannedColor.Fprintf(w, "  Banned:       %d\n", s.Banned)
	deletedColor.Fprintf(w, "  Deleted:      %d\n", s.Deleted)
	noteColor.Fprintf(w, "  ID mismatch:  %d\n", s.IDMismatch)
	unknownColor.Fprintf(w, "  Unknown:      %d\n", s.Unknown)
	errorColor.Fprintf(w, "  Errors:       %d\n", s.Error)

	fmt.Fprintf(w, "\nSkipped (total):        %d\n", s.Skipped)
	if s.SkippedTime > 0 {
		fmt.Fprintf(w, "   recently checked:    %d\n", s.SkippedTime)
	}
	if s.SkippedStatus > 0 {
		fmt.Fprintf(w, "   by status:           %d\n", s.SkippedStatus)
	}
	if s.SkippedNoIdentifier > 0 {
		fmt.Fprintf(w, "   no identifier:       %d\n", s.SkippedNoIdentifier)
	}
	if s.SkippedType > 0 {
		fmt.Fprintf(w, "   wrong type:          %d\n", s.SkippedType)
	}
	if s.Ignored > 0 {
		fmt.Fprintf(w, "\nChecked but ignored:    %d\n", s.Ignored)
	}
	if s.ParseErrors > 0 || s.WriteErrors > 0 {
		fmt.Fprintf(w, "\nParse failures:         %d\n", s.ParseErrors)
		fmt.Fprintf(w, "Write failures:         %d\n", s.WriteErrors)
	}

	if m := s.Method; m.ID+m.Username+m.Invite > 0 {
		fmt.Fprintln(w, "\nMethods used:")
		if m.ID > 0 {
			fmt.Fprintf(w, "   by id:        %d\n", m.ID)
		}
		if m.Username > 0 {
			fmt.Fprintf(w, "   by username:  %d\n", m.Username)
		}
		if m.Invite > 0 {
			fmt.Fprintf(w, "   by invite:    %d\n", m.Invite)
		}
	}
	fmt.Fprintln(w, rule)
}

func renderDryRun(w io.Writer, rep *Report) {
	if len(rep.Results) == 0 {
		return
	}
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "DRY RUN - entries that would be written:")
	for _, res := range rep.Results {
		fmt.Fprintf(w, "  %s: %s -> `%s`\n", res.Path, res.Identifier, res.Status)
		if res.Reason != "" {
			fmt.Fprintf(w, "      reason: `%s`\n", res.Reason)
		}
		if res.Text != "" {
			fmt.Fprintf(w, "      text: `%s`\n", truncate(res.Text, 80))
		}
	}
	fmt.Fprintln(w, "Run again without --dry-run to apply.")
}

func renderChanges(w io.Writer, rep *Report) {
	if len(rep.Changes) == 0 {
		return
	}
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "STATUS CHANGES (%d)\n", len(rep.Changes))
	for _, c := range rep.Changes {
		old := string(c.Old)
		if old == "" {
			old = "(none)"
		}
		fmt.Fprintf(w, "  %s: %s -> %s\n", c.Path, old, c.New)
	}
}

func renderMismatches(w io.Writer, rep *Report) {
	if len(rep.Mismatches) == 0 {
		return
	}
	fmt.Fprintln(w)
	errorColor.Fprintf(w, "ID MISMATCHES (%d) - review manually, stored ids were not touched\n", len(rep.Mismatches))
	for _, ev := range rep.Mismatches {
		fmt.Fprintf(w, "  %s: recorded %d, resolved %d (via %s)\n", ev.Path, ev.OldID, ev.NewID, ev.Method)
	}
}

func renderRecoveredIDs(w io.Writer, rep *Report) {
	if len(rep.RecoveredIDs) == 0 {
		return
	}
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "RECOVERED IDS (%d)\n", len(rep.RecoveredIDs))
	for _, ev := range rep.RecoveredIDs {
		switch {
		case ev.Applied:
			activeColor.Fprintf(w, "  %s -> id: %d (written)\n", ev.Path, ev.NewID)
		case ev.Method == "invite":
			fmt.Fprintf(w, "  %s -> id: %d (not written; enable --write-id)\n", ev.Path, ev.NewID)
		default:
			unknownColor.Fprintf(w, "  %s -> id: %d (via %s - unreliable, verify before storing)\n",
				ev.Path, ev.NewID, ev.Method)
		}
	}
}

func renderUsernames(w io.Writer, rep *Report) {
	if len(rep.Usernames) == 0 {
		return
	}
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "DISCOVERED/CHANGED USERNAMES (%d)\n", len(rep.Usernames))
	for _, ev := range rep.Usernames {
		if ev.OldUsername == "" {
			fmt.Fprintf(w, "  %s: discovered @%s\n", ev.Path, ev.NewUsername)
		} else {
			fmt.Fprintf(w, "  %s: @%s -> @%s\n", ev.Path, ev.OldUsername, ev.NewUsername)
		}
	}
	fmt.Fprintln(w, "Usernames rotate freely; records are never updated automatically.")
}

func renderFailures(w io.Writer, rep *Report) {
	if len(rep.ParseFailures) > 0 {
		fmt.Fprintln(w)
		unknownColor.Fprintf(w, "UNPARSABLE RECORDS (%d)\n", len(rep.ParseFailures))
		for _, f := range rep.ParseFailures {
			fmt.Fprintf(w, "  %s: %s\n", f.Path, f.Reason)
		}
	}
	if len(rep.WriteFailures) > 0 {
		fmt.Fprintln(w)
		errorColor.Fprintf(w, "WRITE FAILURES (%d)\n", len(rep.WriteFailures))
		for _, f := range rep.WriteFailures {
			fmt.Fprintf(w, "  %s: %s\n", f.Path, f.Reason)
		}
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit-3]
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
