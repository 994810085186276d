package lookup

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed classification of platform failures. All
// platform-specific matching happens in the transport adapters; the
// rest of the engine branches only on these kinds.
type ErrorKind string

const (
	// KindAuth covers authorization failures: revoked session, bad
	// credentials. Fatal for the whole run.
	KindAuth ErrorKind = "AUTH"

	// KindConnectivity covers transport-level failures reaching the
	// platform. Fatal for the whole run.
	KindConnectivity ErrorKind = "CONNECTIVITY"

	// KindNotFound covers entity not found, private, or invalid
	// identifier. Maps to the unknown outcome.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindTombstoned covers explicitly deleted entities. Maps to the
	// deleted outcome.
	KindTombstoned ErrorKind = "TOMBSTONED"

	// KindRestricted covers entities flagged unavailable
	// platform-wide. Maps to the banned outcome; the platform's
	// reason text is carried verbatim.
	KindRestricted ErrorKind = "RESTRICTED"

	// KindFloodWait is the platform's mandatory pause signal.
	KindFloodWait ErrorKind = "FLOOD_WAIT"

	// KindOther is any unexpected failure; it is surfaced with its
	// raw signature, never silently dropped.
	KindOther ErrorKind = "OTHER"
)

// PlatformError is a classified failure from the lookup service.
type PlatformError struct {
	Kind ErrorKind
	// Wait is the mandatory pause for KindFloodWait.
	Wait time.Duration
	// Reason and Text carry restriction metadata for KindRestricted.
	Reason string
	Text   string
	// Raw is the original error signature, for diagnostics.
	Raw string
}

func (e *PlatformError) Error() string {
	if e.Kind == KindFloodWait {
		return fmt.Sprintf("%s: wait %s", e.Kind, e.Wait)
	}
	if e.Raw != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Raw)
	}
	return string(e.Kind)
}

// AsPlatformError extracts a *PlatformError from err, wrapping
// unclassified errors as KindOther so no failure escapes the closed
// set.
func AsPlatformError(err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return &PlatformError{Kind: KindOther, Raw: err.Error()}
}

// SessionError is a fatal authorization or connectivity failure. It
// aborts the remaining batch; per-record fallbacks do not retry it.
type SessionError struct {
	Kind ErrorKind
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session failure (%s): %v", e.Kind, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// IsSessionError reports whether err is fatal for the whole run.
func IsSessionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se)
}
