package record

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field regexes mirror the record grammar: line-oriented fields with
// backtick-quoted values, optional strikethrough, optional trailing
// observation dates.
var (
	reID   = regexp.MustCompile("^id:\\s*`?(\\d+)`?")
	reType = regexp.MustCompile(`^type:\s*(\w+)`)

	reUsernameInline = regexp.MustCompile("^username:\\s*(~~)?`?@([A-Za-z0-9_]{5,32})`?(~~)?")
	reUsernameBlock  = regexp.MustCompile(`^username:\s*$`)
	reUsernameEntry  = regexp.MustCompile("^\\s*-\\s*(~~)?`@([A-Za-z0-9_]{5,32})`(~~)?(?:\\s*,\\s*`(\\d{4}-\\d{2}-\\d{2})`)?")

	reInviteInline = regexp.MustCompile(`^invite:\s*(~~)?https://t\.me/\+([A-Za-z0-9_-]+)`)
	reInviteBlock  = regexp.MustCompile(`^invite:\s*$`)
	reInviteEntry  = regexp.MustCompile("^\\s*-\\s*(~~)?https://t\\.me/\\+([A-Za-z0-9_-]+)(?:~~)?(?:\\s*,\\s*`(\\d{4}-\\d{2}-\\d{2})`)?")

	reStatusBlock = regexp.MustCompile(`^status:\s*$`)
	reStatusEntry = regexp.MustCompile("^\\s*-\\s*`([^`]+)`\\s*,\\s*`(\\d{4}-\\d{2}-\\d{2})\\s+(\\d{2}:\\d{2})`")
	reStatusSub   = regexp.MustCompile(`^\s{2,}-\s`)
	reSubReason   = regexp.MustCompile("^\\s{2,}-\\s*reason:\\s*`([^`]*)`")
	reSubText     = regexp.MustCompile("^\\s{2,}-\\s*text:\\s*`([^`]*)`")

	// reNextField marks the end of a block: any new top-level field.
	reNextField = regexp.MustCompile(`^[a-z_]+:(\s|$)`)
)

// Parse reads one entity record from its raw file text.
//
// Parsing tolerates single-value and list-valued identifier fields,
// strikethrough (retired/expired) markers, and trailing per-entry
// dates. Malformed lines inside a block are ignored, not fatal.
//
// A record without a recognizable status block, or without any
// resolvable identifier, yields a *ParseError. The partially parsed
// record is still returned alongside the error so callers can consult
// its Kind for filtering statistics.
func Parse(path string, data []byte) (*EntityRecord, error) {
	rec := &EntityRecord{
		Path:           path,
		Kind:           KindUnknown,
		frontmatterEnd: -1,
		statusStart:    -1,
		statusEnd:      -1,
	}
	rec.lines = strings.Split(string(data), "\n")

	body := 0
	if len(rec.lines) > 0 && strings.TrimRight(rec.lines[0], "\r") == "---" {
		for i := 1; i < len(rec.lines); i++ {
			if strings.TrimRight(rec.lines[i], "\r") == "---" {
				rec.frontmatterEnd = i + 1
				body = i + 1
				break
			}
		}
	}

	for i := body; i < len(rec.lines); i++ {
		line := strings.TrimRight(rec.lines[i], "\r")

		switch {
		case rec.NumericID == 0 && reID.MatchString(line):
			m := reID.FindStringSubmatch(line)
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil {
				rec.NumericID = id
			}

		case reType.MatchString(line):
			if rec.Kind == KindUnknown {
				rec.Kind = ParseKind(reType.FindStringSubmatch(line)[1])
			}

		case reUsernameInline.MatchString(line):
			m := reUsernameInline.FindStringSubmatch(line)
			rec.Usernames = append(rec.Usernames, Username{
				Handle: m[2],
				Struck: m[1] != "",
			})

		case reUsernameBlock.MatchString(line):
			i = parseListBlock(rec.lines, i, func(entry string) {
				m := reUsernameEntry.FindStringSubmatch(entry)
				if m == nil {
					return
				}
				u := Username{Handle: m[2], Struck: m[1] != ""}
				if m[4] != "" {
					if t, err := time.Parse(DateLayout, m[4]); err == nil {
						u.Observed, u.Dated = t, true
					}
				}
				rec.Usernames = append(rec.Usernames, u)
			})

		case reInviteInline.MatchString(line):
			m := reInviteInline.FindStringSubmatch(line)
			rec.Invites = append(rec.Invites, InviteLink{
				Hash:    m[2],
				Expired: m[1] != "",
			})

		case reInviteBlock.MatchString(line):
			i = parseListBlock(rec.lines, i, func(entry string) {
				m := reInviteEntry.FindStringSubmatch(entry)
				if m == nil {
					return
				}
				l := InviteLink{Hash: m[2], Expired: m[1] != ""}
				if m[3] != "" {
					if t, err := time.Parse(DateLayout, m[3]); err == nil {
						l.Observed, l.Dated = t, true
					}
				}
				rec.Invites = append(rec.Invites, l)
			})

		case reStatusBlock.MatchString(line):
			if !rec.HasStatusBlock {
				rec.HasStatusBlock = true
				i = rec.parseStatusBlock(i)
			}
		}
	}

	if !rec.HasStatusBlock {
		return rec, &ParseError{Path: path, Kind: ErrKindNoStatusBlock}
	}
	if !rec.HasIdentifier() {
		return rec, &ParseError{Path: path, Kind: ErrKindNoIdentifier}
	}
	return rec, nil
}

// parseListBlock walks the lines following a block field header and
// feeds each list entry to fn. It returns the index of the last line
// consumed.
func parseListBlock(lines []string, header int, fn func(entry string)) int {
	i := header
	for j := header + 1; j < len(lines); j++ {
		line := strings.TrimRight(lines[j], "\r")
		if reNextField.MatchString(line) {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			fn(line)
		}
		i = j
	}
	return i
}

// parseStatusBlock parses the entries after the "status:" header line
// and records the span they occupy for later patching. The span runs
// from the first entry line to the last, so opaque lines between the
// header and the first entry survive a rewrite. Returns the index of
// the last line consumed.
func (r *EntityRecord) parseStatusBlock(header int) int {
	r.statusStart = header + 1
	r.statusEnd = header + 1

	first := -1
	last := header
	var cur *StatusEntry
	flush := func() {
		if cur != nil {
			r.History = append(r.History, *cur)
			cur = nil
		}
	}

	i := header
	for j := header + 1; j < len(r.lines); j++ {
		line := strings.TrimRight(r.lines[j], "\r")
		if reNextField.MatchString(line) {
			break
		}
		i = j

		if m := reStatusEntry.FindStringSubmatch(line); m != nil {
			flush()
			e := StatusEntry{Status: Status(m[1]), raw: []string{r.lines[j]}}
			if t, err := time.Parse(TimeLayout, m[2]+" "+m[3]); err == nil {
				e.Time = t
			}
			cur = &e
			if first < 0 {
				first = j
			}
			last = j
		} else if reStatusSub.MatchString(line) && cur != nil {
			if m := reSubReason.FindStringSubmatch(line); m != nil {
				cur.Reason = m[1]
			} else if m := reSubText.FindStringSubmatch(line); m != nil {
				cur.Text = m[1]
			}
			cur.raw = append(cur.raw, r.lines[j])
			last = j
		}
		// Anything else inside the block is ignored.
	}
	flush()

	if first >= 0 {
		r.statusStart = first
		r.statusEnd = last + 1
	}
	return i
}
