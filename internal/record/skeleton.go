package record

import (
	"fmt"
	"strings"
)

// Skeleton renders a fresh record for a newly fetched entity: the
// identifiers the platform confirmed plus a status block seeded with
// the observed entry. The output parses back through Parse, so a
// skeleton saved to the record set is immediately checkable.
func Skeleton(id int64, handle, inviteHash string, entry StatusEntry) []byte {
	var lines []string
	if id != 0 {
		lines = append(lines, fmt.Sprintf("id: `%d`", id))
	}
	if handle != "" {
		lines = append(lines, fmt.Sprintf("username: `@%s`", handle))
	}
	if inviteHash != "" {
		lines = append(lines, "invite: https://t.me/+"+inviteHash)
	}
	lines = append(lines, "status:")
	lines = append(lines, FormatEntry(entry)...)
	lines = append(lines, "")
	return []byte(strings.Join(lines, "\n"))
}
