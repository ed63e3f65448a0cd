package restore

import (
	"context"
	"fmt"

	"github.com/dean-jl/kuma-restore/internal/kuma"
)

// phase is one restore phase's view of the server: a session that can be
// replaced once, mid-phase, when a call hits a transient connection error.
type phase struct {
	r       *Restorer
	ctx     context.Context
	session kuma.Session
}

// beginPhase opens a fresh authenticated session for one phase.
func (r *Restorer) beginPhase(ctx context.Context) (*phase, error) {
	session, err := r.dial()
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return &phase{r: r, ctx: ctx, session: session}, nil
}

// end closes the phase's session. Disconnect errors are swallowed; the
// session is done either way.
func (p *phase) end() {
	_ = p.session.Disconnect()
}

// call invokes fn against the current session, pacing through the rate
// limiter. On a transient connection error it discards the session, dials a
// brand-new one, and invokes fn once more. Any other error, or a second
// failure, propagates. Exactly one retry, no backoff.
func (p *phase) call(fn func(kuma.Session) (interface{}, error)) (interface{}, error) {
	if err := p.r.rateLimiter.Wait(p.ctx); err != nil {
		return nil, fmt.Errorf("rate limiting failed: %w", err)
	}

	res, err := fn(p.session)
	if err == nil || !kuma.IsTransient(err) {
		return res, err
	}

	p.r.logger.Printf("[RETRY] Call failed (%v), reconnecting and retrying once", err)
	_ = p.session.Disconnect()

	fresh, dialErr := p.r.dial()
	if dialErr != nil {
		return nil, fmt.Errorf("reconnect after transient error (%v) failed: %w", err, dialErr)
	}
	p.session = fresh

	return fn(p.session)
}

// Monitors lists the server's monitors through the retry wrapper, which also
// makes the phase usable as the id resolver's name-lookup fallback.
func (p *phase) Monitors() ([]kuma.MonitorInfo, error) {
	res, err := p.call(func(s kuma.Session) (interface{}, error) {
		return s.Monitors()
	})
	if err != nil {
		return nil, err
	}
	return res.([]kuma.MonitorInfo), nil
}

// Notifications lists the server's notification channels through the retry
// wrapper.
func (p *phase) Notifications() ([]kuma.NotificationInfo, error) {
	res, err := p.call(func(s kuma.Session) (interface{}, error) {
		return s.Notifications()
	})
	if err != nil {
		return nil, err
	}
	return res.([]kuma.NotificationInfo), nil
}
