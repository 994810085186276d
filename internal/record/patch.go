package record

import (
	"fmt"
	"strings"
)

// FormatEntry renders a synthetic status entry as record lines.
// Backticks inside captured restriction text are replaced so they
// cannot break the field quoting.
func FormatEntry(e StatusEntry) []string {
	lines := []string{fmt.Sprintf("- `%s`, `%s`", e.Status, e.Time.Format(TimeLayout))}
	if e.Reason != "" {
		lines = append(lines, fmt.Sprintf("  - reason: `%s`", strings.ReplaceAll(e.Reason, "`", "'")))
	}
	if e.Text != "" {
		lines = append(lines, fmt.Sprintf("  - text: `%s`", strings.ReplaceAll(e.Text, "`", "'")))
	}
	return lines
}

// Patch serializes the record back to file bytes.
//
// This is a targeted rewrite, not a regeneration: only the status
// entry span changes when the history was mutated, and at most one
// id: line is inserted when an id recovery was recorded. Every other
// byte of the original file is emitted unchanged. A record with no
// pending mutation round-trips exactly.
func (r *EntityRecord) Patch() []byte {
	if !r.Dirty() {
		return []byte(strings.Join(r.lines, "\n"))
	}

	out := make([]string, 0, len(r.lines)+len(r.History)*3+1)

	idLine := -1
	if r.insertID != 0 {
		// Insert after the frontmatter when present, else at the top.
		idLine = 0
		if r.frontmatterEnd >= 0 {
			idLine = r.frontmatterEnd
		}
	}

	for i := 0; i < len(r.lines); i++ {
		if i == idLine {
			if r.frontmatterEnd >= 0 && strings.TrimSpace(r.lines[i]) != "" {
				out = append(out, "")
			}
			out = append(out, fmt.Sprintf("id: `%d`", r.insertID))
		}
		if r.dirtyStatus && i == r.statusStart {
			for _, e := range r.History {
				if e.Synthetic() {
					out = append(out, FormatEntry(e)...)
				} else {
					out = append(out, e.raw...)
				}
			}
			if r.statusEnd > r.statusStart {
				i = r.statusEnd - 1 // skip the old entry span
			} else {
				out = append(out, r.lines[i])
			}
			continue
		}
		out = append(out, r.lines[i])
	}

	// Spans at end-of-file: a status: header or frontmatter close on
	// the final line leaves nothing to iterate past.
	if idLine >= len(r.lines) {
		out = append(out, fmt.Sprintf("id: `%d`", r.insertID))
	}
	if r.dirtyStatus && r.statusStart >= len(r.lines) {
		for _, e := range r.History {
			if e.Synthetic() {
				out = append(out, FormatEntry(e)...)
			} else {
				out = append(out, e.raw...)
			}
		}
	}

	return []byte(strings.Join(out, "\n"))
}
