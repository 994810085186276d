package lookup

import (
	"context"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

// Resolution is what the platform reports for a successfully resolved
// entity.
type Resolution struct {
	NumericID int64
	Username  string // current handle, without @, empty if none

	// Deleted marks a tombstoned account.
	Deleted bool

	// Restricted entity metadata. Platform is "all" for a
	// platform-wide restriction; anything narrower is treated as
	// inconclusive.
	Restricted          bool
	RestrictionPlatform string
	RestrictionReason   string
	RestrictionText     string
}

// Service is the consumed lookup capability. Implementations map
// their raw failures to *PlatformError; the engine never inspects
// transport-specific errors.
type Service interface {
	ResolveByID(ctx context.Context, id int64) (*Resolution, error)
	ResolveByUsername(ctx context.Context, handle string) (*Resolution, error)
	ResolveByInvite(ctx context.Context, hash string) (*Resolution, error)
}

// Analyze turns a successful resolution into a liveness status. A
// platform-wide restriction is a ban and carries the platform's
// reason and text verbatim; a partial or unexplained restriction is
// inconclusive.
func Analyze(res *Resolution) (status record.Status, reason, text string) {
	if res.Deleted {
		return record.StatusDeleted, "", ""
	}
	if res.Restricted {
		if res.RestrictionPlatform == "all" {
			return record.StatusBanned, res.RestrictionReason, res.RestrictionText
		}
		return record.StatusUnknown, "", ""
	}
	return record.StatusActive, "", ""
}
