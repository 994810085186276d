package record

import (
	"errors"
	"fmt"
)

// ParseErrorKind categorizes record parse failures.
type ParseErrorKind string

const (
	// ErrKindNoStatusBlock means the record has no "status:" block, so
	// a check result could not be written back.
	ErrKindNoStatusBlock ParseErrorKind = "NO_STATUS_BLOCK"

	// ErrKindNoIdentifier means the record carries neither a numeric
	// id, a username, nor an invite link.
	ErrKindNoIdentifier ParseErrorKind = "NO_IDENTIFIER"
)

// ParseError reports a malformed or incomplete record. Parse errors
// are recovered locally: the record is skipped and counted, never
// crashed on.
type ParseError struct {
	Path string
	Kind ParseErrorKind
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindNoStatusBlock:
		return fmt.Sprintf("%s: no status block", e.Path)
	case ErrKindNoIdentifier:
		return fmt.Sprintf("%s: no resolvable identifier", e.Path)
	}
	return fmt.Sprintf("%s: malformed record", e.Path)
}

// IsNoIdentifier reports whether err is a ParseError caused by a
// record with no resolvable identifier.
func IsNoIdentifier(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == ErrKindNoIdentifier
}
