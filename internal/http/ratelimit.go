package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// RateState is the last rate-limit window reported by the service.
type RateState struct {
	Remaining int
	ResetAt   time.Time
	Limit     int
	Known     bool
}

// Governor delays calls when the service reports the window is exhausted.
// It is advisory: the service may still reject a call.
type Governor struct {
	mu     sync.Mutex
	state  RateState
	skew   time.Duration
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger tdx.Logger
}

// GovernorOption configures a Governor.
type GovernorOption func(*Governor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GovernorOption {
	return func(g *Governor) { g.now = now }
}

// WithSleep replaces the context-aware sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) GovernorOption {
	return func(g *Governor) { g.sleep = sleep }
}

// WithSkew sets how long past the reset time calls resume.
func WithSkew(skew time.Duration) GovernorOption {
	return func(g *Governor) { g.skew = skew }
}

// WithGovernorLogger sets the logger that reports waits.
func WithGovernorLogger(logger tdx.Logger) GovernorOption {
	return func(g *Governor) { g.logger = logger }
}

// NewGovernor creates a governor with no known window.
func NewGovernor(opts ...GovernorOption) *Governor {
	g := &Governor{
		skew:  constants.RateLimitSkew,
		now:   time.Now,
		sleep: sleepContext,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// State returns a copy of the current window.
func (g *Governor) State() RateState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

// BeforeCall blocks until the reset time plus skew when at most one call is
// left in the window. It returns early with the context error on cancellation.
func (g *Governor) BeforeCall(ctx context.Context) error {
	g.mu.Lock()
	state := g.state
	now := g.now()
	g.mu.Unlock()

	if !state.Known || state.Remaining > constants.RateLimitFloor || !state.ResetAt.After(now) {
		return nil
	}

	wait := state.ResetAt.Add(g.skew).Sub(now)

	if g.logger != nil {
		g.logger.Warn("Rate limit reached, waiting for reset", map[string]interface{}{
			"remaining": state.Remaining,
			"reset_at":  state.ResetAt.Format(time.RFC3339),
			"wait":      wait.String(),
		})
	}

	if err := g.sleep(ctx, wait); err != nil {
		return err
	}

	g.mu.Lock()
	g.state.Known = false
	g.mu.Unlock()

	return nil
}

// AfterCall replaces the window with the one reported by the response
// headers. Missing or unparsable values are zero, and a response without a
// remaining count leaves no window, so a stale exhausted window is dropped.
func (g *Governor) AfterCall(header http.Header) {
	var state RateState

	if v := header.Get(constants.HeaderRateLimitRemaining); v != "" {
		if remaining, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			state.Remaining = remaining
			state.Known = true
		}
	}

	if v := header.Get(constants.HeaderRateLimitReset); v != "" {
		if resetAt, ok := parseReset(v); ok {
			state.ResetAt = resetAt
		}
	}

	if v := header.Get(constants.HeaderRateLimitLimit); v != "" {
		if limit, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			state.Limit = limit
		}
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
}

// parseReset accepts an HTTP date or unix seconds.
func parseReset(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)

	if t, err := http.ParseTime(v); err == nil {
		return t, true
	}

	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}

	return time.Time{}, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
