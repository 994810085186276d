package record

import "time"

// Kind classifies a tracked entity.
type Kind string

const (
	KindChannel Kind = "channel"
	KindGroup   Kind = "group"
	KindUser    Kind = "user"
	KindBot     Kind = "bot"
	KindWebsite Kind = "website"
	KindUnknown Kind = "unknown"
)

// ValidKinds defines the recognized entity kinds.
var ValidKinds = map[Kind]bool{
	KindChannel: true,
	KindGroup:   true,
	KindUser:    true,
	KindBot:     true,
	KindWebsite: true,
	KindUnknown: true,
}

// ParseKind maps a raw type field value to a Kind.
// Unrecognized values map to KindUnknown rather than failing the parse.
func ParseKind(s string) Kind {
	k := Kind(s)
	if ValidKinds[k] {
		return k
	}
	return KindUnknown
}

// Status is the canonical liveness classification of an entity.
type Status string

const (
	StatusActive     Status = "active"
	StatusBanned     Status = "banned"
	StatusDeleted    Status = "deleted"
	StatusUnknown    Status = "unknown"
	StatusIDMismatch Status = "id_mismatch"
	StatusError      Status = "error"
)

// Definitive reports whether s settles a check. unknown and error are
// provisional: a lower-priority identifier may still improve on them.
func (s Status) Definitive() bool {
	switch s {
	case StatusActive, StatusBanned, StatusDeleted, StatusIDMismatch:
		return true
	}
	return false
}

// TimeLayout is the minute-precision timestamp format used in status
// entries.
const TimeLayout = "2006-01-02 15:04"

// DateLayout is the date format used for per-entry observation dates on
// usernames and invite links.
const DateLayout = "2006-01-02"

// StatusEntry is one element of an entity's status history.
type StatusEntry struct {
	Status Status
	Time   time.Time
	// Reason and Text carry the platform's restriction metadata for
	// banned entries, verbatim.
	Reason string
	Text   string

	// raw holds the original file lines of an entry read from disk,
	// including any sub-items, so an untouched entry is re-emitted
	// byte-for-byte. Empty for entries created by the engine.
	raw []string
}

// Synthetic reports whether the entry was created by the engine during
// this run (as opposed to read back from the file).
func (e *StatusEntry) Synthetic() bool {
	return len(e.raw) == 0
}

// Username is one stored handle, optionally dated and optionally
// struck through (retired).
type Username struct {
	Handle   string // without the leading @
	Observed time.Time
	Dated    bool
	Struck   bool
}

// InviteLink is one stored invite, optionally dated. Expired links are
// marked with strikethrough in the record.
type InviteLink struct {
	Hash     string // the part after https://t.me/+
	Observed time.Time
	Dated    bool
	Expired  bool
}

// URL returns the full invite URL.
func (l InviteLink) URL() string {
	return "https://t.me/+" + l.Hash
}

// EntityRecord is the parsed form of one entity's markdown record.
//
// The engine owns exactly NumericID, Usernames, Invites and History;
// every other line of the file is opaque pass-through and survives a
// read-patch-write cycle byte-for-byte.
type EntityRecord struct {
	Path      string
	Kind      Kind
	NumericID int64 // 0 when absent
	Usernames []Username
	Invites   []InviteLink
	// History is ordered newest first.
	History []StatusEntry

	// HasStatusBlock distinguishes an empty status block from a
	// missing one; only records with a block can be patched.
	HasStatusBlock bool

	// Raw layout, for targeted patching.
	lines          []string // file split on \n; last element may be ""
	statusStart    int      // index of the first entry line after "status:"
	statusEnd      int      // index one past the last status block line
	frontmatterEnd int      // index just past the closing ---, or -1

	dirtyStatus bool
	insertID    int64 // pending id: line insertion, 0 = none
}

// CurrentStatus returns the newest dated status entry, or ok=false
// when the history has none. Entries whose timestamp could not be
// parsed stay in the file but are invisible here.
func (r *EntityRecord) CurrentStatus() (StatusEntry, bool) {
	for _, e := range r.History {
		if !e.Time.IsZero() {
			return e, true
		}
	}
	return StatusEntry{}, false
}

// CurrentUsername returns the current (most recently appended,
// non-struck) handle, or ok=false when the record has none.
func (r *EntityRecord) CurrentUsername() (Username, bool) {
	for i := len(r.Usernames) - 1; i >= 0; i-- {
		if !r.Usernames[i].Struck {
			return r.Usernames[i], true
		}
	}
	return Username{}, false
}

// ActiveInvites returns the non-expired invite links in file order
// (oldest first).
func (r *EntityRecord) ActiveInvites() []InviteLink {
	var out []InviteLink
	for _, l := range r.Invites {
		if !l.Expired {
			out = append(out, l)
		}
	}
	return out
}

// HasIdentifier reports whether any lookup identifier exists: a numeric
// id, a usable username, or any invite link (expired ones still count
// as a last resort).
func (r *EntityRecord) HasIdentifier() bool {
	if r.NumericID != 0 {
		return true
	}
	if _, ok := r.CurrentUsername(); ok {
		return true
	}
	return len(r.Invites) > 0
}

// SetHistory replaces the status history and marks the status block
// span for rewriting on the next Patch call.
func (r *EntityRecord) SetHistory(entries []StatusEntry) {
	r.History = entries
	r.dirtyStatus = true
}

// SetNumericID records a recovered id for insertion into the file on
// the next Patch call. It is a no-op if the record already has an id.
func (r *EntityRecord) SetNumericID(id int64) {
	if r.NumericID != 0 || id == 0 {
		return
	}
	r.NumericID = id
	r.insertID = id
}

// Dirty reports whether Patch would change the file.
func (r *EntityRecord) Dirty() bool {
	return r.dirtyStatus || r.insertID != 0
}
