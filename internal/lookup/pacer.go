package lookup

import (
	"context"
	"time"
)

// DefaultDelay is the mandatory pause before each platform call.
const DefaultDelay = 20 * time.Second

// Pacer serializes all platform calls through one "next allowed call
// time" cursor.
//
// Checks are intentionally never concurrent: a single cursor makes
// the shared rate budget and flood-wait backoff trivially correct.
// The two suspension points of a run are exactly Wait (the pre-call
// delay) and Suspend (a platform-mandated flood wait).
type Pacer struct {
	delay time.Duration
	next  time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with the given minimum inter-call delay.
// A non-positive delay falls back to DefaultDelay.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Pacer{
		delay: delay,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// SetClock overrides the time source and sleeper, for tests.
func (p *Pacer) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	p.now = now
	p.sleep = sleep
}

// Delay returns the configured inter-call delay.
func (p *Pacer) Delay() time.Duration { return p.delay }

// Wait blocks until the next call is allowed, then reserves the
// following slot. The delay is enforced before each call, so the
// first call of a run proceeds immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	now := p.now()
	if d := p.next.Sub(now); d > 0 {
		if err := p.sleep(ctx, d); err != nil {
			return err
		}
		now = p.now()
	}
	p.next = now.Add(p.delay)
	return nil
}

// Suspend blocks for a platform-mandated flood wait and pushes the
// cursor out so the whole batch honors the pause.
func (p *Pacer) Suspend(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := p.sleep(ctx, d); err != nil {
		return err
	}
	p.next = p.now().Add(p.delay)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
