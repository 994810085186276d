package lookup

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/resolve"
)

// Outcome is the transient result of one query attempt against one
// candidate identifier.
type Outcome struct {
	Method resolve.Method
	Status record.Status

	// Restriction metadata for banned outcomes, verbatim.
	Reason string
	Text   string

	// Discovered identity, when the platform revealed it.
	ResolvedID       int64
	ResolvedUsername string

	// Failure diagnostics for unknown/error outcomes.
	ErrorKind ErrorKind
	Raw       string
}

// Client performs one external query per candidate identifier,
// classifies the result, and enforces the shared rate budget.
type Client struct {
	svc   Service
	pacer *Pacer
	log   *slog.Logger
}

// NewClient wraps a lookup service with pacing and classification.
func NewClient(svc Service, pacer *Pacer, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{svc: svc, pacer: pacer, log: log}
}

// Query resolves one candidate. The mandatory inter-call delay is
// enforced before the call. A flood-wait signal suspends the whole
// batch for the reported duration and retries the same call exactly
// once; every other failure is terminal for this attempt and is
// classified into the outcome.
//
// A fatal session failure (authorization or connectivity) is returned
// as an error; everything else is an Outcome.
func (c *Client) Query(ctx context.Context, cand resolve.Candidate, expectedID int64) (Outcome, error) {
	res, err := c.call(ctx, cand, true)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		pe := AsPlatformError(err)
		switch pe.Kind {
		case KindAuth, KindConnectivity:
			return Outcome{}, &SessionError{Kind: pe.Kind, Err: pe}
		case KindNotFound:
			return Outcome{Method: cand.Method, Status: record.StatusUnknown, ErrorKind: pe.Kind, Raw: pe.Raw}, nil
		case KindTombstoned:
			return Outcome{Method: cand.Method, Status: record.StatusDeleted, ErrorKind: pe.Kind}, nil
		case KindRestricted:
			return Outcome{
				Method: cand.Method,
				Status: record.StatusBanned,
				Reason: pe.Reason,
				Text:   pe.Text,
			}, nil
		default:
			return Outcome{Method: cand.Method, Status: record.StatusError, ErrorKind: pe.Kind, Raw: pe.Raw}, nil
		}
	}

	out := Outcome{
		Method:           cand.Method,
		ResolvedID:       res.NumericID,
		ResolvedUsername: res.Username,
	}

	// Identifier integrity first: a username or invite that resolves
	// to a different entity than the recorded id is a mismatch
	// regardless of that entity's liveness.
	if cand.Method != resolve.ByID && expectedID != 0 && res.NumericID != 0 && res.NumericID != expectedID {
		out.Status = record.StatusIDMismatch
		return out, nil
	}

	out.Status, out.Reason, out.Text = Analyze(res)
	return out, nil
}

// call dispatches to the service, pacing every attempt. retry guards
// the single flood-wait retry.
func (c *Client) call(ctx context.Context, cand resolve.Candidate, retry bool) (*Resolution, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	var (
		res *Resolution
		err error
	)
	switch cand.Method {
	case resolve.ByID:
		id, perr := strconv.ParseInt(cand.Value, 10, 64)
		if perr != nil {
			return nil, &PlatformError{Kind: KindOther, Raw: "bad numeric id: " + cand.Value}
		}
		res, err = c.svc.ResolveByID(ctx, id)
	case resolve.ByUsername:
		res, err = c.svc.ResolveByUsername(ctx, cand.Value)
	case resolve.ByInvite:
		res, err = c.svc.ResolveByInvite(ctx, cand.Value)
	default:
		return nil, &PlatformError{Kind: KindOther, Raw: "unsupported method " + string(cand.Method)}
	}
	if err == nil {
		return res, nil
	}

	pe := AsPlatformError(err)
	if pe.Kind == KindFloodWait && retry {
		c.log.Warn("flood wait, suspending batch", "wait", pe.Wait, "candidate", cand.String())
		if serr := c.pacer.Suspend(ctx, pe.Wait); serr != nil {
			return nil, serr
		}
		return c.call(ctx, cand, false)
	}
	if pe.Kind == KindFloodWait {
		// Second flood wait in a row: give up on this attempt.
		return nil, &PlatformError{Kind: KindOther, Raw: "repeated flood wait: " + pe.Error()}
	}
	return nil, pe
}
