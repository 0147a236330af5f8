package guard

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/internal/taskrace"
	"github.com/tourcompanion/portal-server/session"
)

const (
	// DefaultSettleDelay lets the session store finish its own
	// activation race before the guard evaluates. A debounce, not a
	// correctness requirement.
	DefaultSettleDelay = 300 * time.Millisecond

	// DefaultCheckTimeout bounds the role membership evaluation.
	DefaultCheckTimeout = 5 * time.Second
)

// Decision is the guard's verdict for one navigation target.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionError
	DecisionRedirect
	DecisionDenied
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionError:
		return "error"
	case DecisionRedirect:
		return "redirect"
	case DecisionDenied:
		return "denied"
	case DecisionAllowed:
		return "allowed"
	}
	return "unknown"
}

// Denial reasons.
const (
	ReasonTimeout      = "timeout"
	ReasonInsufficient = "insufficient"
)

// Result pairs a decision with its reason (set for error and denied).
type Result struct {
	Decision Decision
	Reason   string
}

// Guard composes the session snapshot with the role gate and resolves
// a render decision per the fixed precedence: loading, error,
// redirect, denied, allowed.
type Guard struct {
	gate         RoleGate
	settleDelay  time.Duration
	checkTimeout time.Duration
	log          zerolog.Logger
}

// Option modifies a Guard instance.
type Option func(*Guard)

// WithSettleDelay overrides the pre-evaluation debounce (primarily for testing).
func WithSettleDelay(d time.Duration) Option {
	return func(g *Guard) { g.settleDelay = d }
}

// WithCheckTimeout overrides the role-check timeout (primarily for testing).
func WithCheckTimeout(d time.Duration) Option {
	return func(g *Guard) { g.checkTimeout = d }
}

// WithLogger sets the guard's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) { g.log = logger }
}

func New(gate RoleGate, options ...Option) *Guard {
	g := &Guard{
		gate:         gate,
		settleDelay:  DefaultSettleDelay,
		checkTimeout: DefaultCheckTimeout,
		log:          log.With().Str("component", "route-guard").Logger(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Evaluate resolves the decision for one navigation. st and sess are
// the session store's current snapshot; required is empty for
// default-protected routes. Failures never escape: every path ends in
// a terminal decision.
func (g *Guard) Evaluate(ctx context.Context, st session.State, sess *backend.Session, required Role) Result {
	g.settle(ctx)

	// Role membership is vacuous without a required role or without a
	// user; authentication presence is re-checked below.
	allowed := true
	reason := ""
	if required != "" && st.User != nil {
		out := taskrace.Run(ctx, g.checkTimeout, func(ctx context.Context) (bool, error) {
			return g.gate.Check(ctx, sess, required)
		})
		switch out.Status {
		case taskrace.Resolved:
			if out.Err != nil {
				g.log.Warn().Err(out.Err).Str("required", string(required)).Msg("role check failed")
				allowed, reason = false, ReasonInsufficient
			} else if !out.Value {
				allowed, reason = false, ReasonInsufficient
			}
		default:
			g.log.Warn().Stringer("status", out.Status).Str("required", string(required)).Msg("role check did not resolve")
			allowed, reason = false, ReasonTimeout
		}
	}

	switch {
	case st.Loading:
		return Result{Decision: DecisionLoading}
	case st.Err != "":
		return Result{Decision: DecisionError, Reason: st.Err}
	case st.User == nil:
		return Result{Decision: DecisionRedirect}
	case !allowed:
		return Result{Decision: DecisionDenied, Reason: reason}
	default:
		return Result{Decision: DecisionAllowed}
	}
}

func (g *Guard) settle(ctx context.Context) {
	if g.settleDelay <= 0 {
		return
	}
	timer := time.NewTimer(g.settleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
