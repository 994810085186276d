// Package record parses and patches entity record files.
//
// A record is a human-edited markdown file describing one tracked
// Telegram entity (or a linked website): an optional YAML frontmatter,
// a handful of line-oriented fields the engine owns (id, type,
// username, invite, status), and free-form narrative the engine must
// never touch. Serialization is therefore a targeted patch of the
// owned spans rather than a full regeneration, so a read-modify-write
// cycle provably leaves unrelated bytes intact.
package record
