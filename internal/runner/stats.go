package runner

import (
	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/resolve"
)

// MethodStats tallies which lookup surface settled each check.
type MethodStats struct {
	ID       int `json:"id"`
	Username int `json:"username"`
	Invite   int `json:"invite"`
}

// Stats aggregates one batch run. Every record lands in exactly one
// outcome or skip counter, so silent data loss is structurally
// impossible to miss in the summary.
type Stats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Banned     int `json:"banned"`
	Deleted    int `json:"deleted"`
	IDMismatch int `json:"id_mismatch"`
	Unknown    int `json:"unknown"`
	Error      int `json:"error"`

	Skipped             int `json:"skipped"`
	SkippedTime         int `json:"skipped_time"`
	SkippedStatus       int `json:"skipped_status"`
	SkippedNoIdentifier int `json:"skipped_no_identifier"`
	SkippedType         int `json:"skipped_type"`

	Ignored     int `json:"ignored"`
	ParseErrors int `json:"parse_errors"`
	WriteErrors int `json:"write_errors"`

	Method MethodStats `json:"method"`
}

// AddOutcome counts a checked record's canonical status.
func (s *Stats) AddOutcome(st record.Status) {
	s.Total++
	switch st {
	case record.StatusActive:
		s.Active++
	case record.StatusBanned:
		s.Banned++
	case record.StatusDeleted:
		s.Deleted++
	case record.StatusIDMismatch:
		s.IDMismatch++
	case record.StatusUnknown:
		s.Unknown++
	default:
		s.Error++
	}
}

// AddMethod counts the lookup surface that produced a definitive
// answer.
func (s *Stats) AddMethod(m resolve.Method) {
	switch m {
	case resolve.ByID:
		s.Method.ID++
	case resolve.ByUsername:
		s.Method.Username++
	case resolve.ByInvite:
		s.Method.Invite++
	}
}
