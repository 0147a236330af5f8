// Package session owns the authenticated-session state for one login
// session: a snapshot of {user, loading, error} resolved once per
// activation and kept current by the provider's change stream.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/internal/taskrace"
)

// DefaultInitTimeout bounds the initial session lookup. A provider
// that has not answered by then is treated as unreachable and the
// store settles with an error instead of loading forever.
const DefaultInitTimeout = 8 * time.Second

// timeoutErrText is the error string the state carries when the
// activation race is lost to the timeout.
const timeoutErrText = "authentication timeout - please try again"

// State is the reactive tuple the store exposes. Loading is true from
// activation until exactly one of success, error, or timeout resolves
// it.
type State struct {
	User    *backend.User
	Loading bool
	Err     string
}

// Store resolves and tracks the auth session for one login session.
// All state mutations go through the closed-flag guard: after Close
// no mutation can occur, whatever the provider does afterwards.
type Store struct {
	provider    backend.AuthProvider
	initTimeout time.Duration
	log         zerolog.Logger

	mu         sync.Mutex
	state      State
	session    *backend.Session
	closed     bool
	cancelInit context.CancelFunc
	sub        backend.Subscription
}

// Option modifies a Store instance.
type Option func(*Store)

// WithInitTimeout overrides the activation timeout (primarily for testing).
func WithInitTimeout(d time.Duration) Option {
	return func(s *Store) { s.initTimeout = d }
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.log = logger }
}

func New(provider backend.AuthProvider, options ...Option) *Store {
	s := &Store{
		provider:    provider,
		initTimeout: DefaultInitTimeout,
		log:         log.With().Str("component", "session-store").Logger(),
		state:       State{Loading: true},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Activate resolves the initial session and subscribes to the change
// stream. For a public no-auth route the provider is bypassed entirely
// and the store settles to the signed-out state at once. Otherwise the
// provider lookup races the init timeout; whichever settles first
// wins, and the loser's eventual result is discarded.
func (s *Store) Activate(ctx context.Context, noAuthRoute bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	raceCtx, cancel := context.WithCancel(ctx)
	s.cancelInit = cancel
	s.mu.Unlock()

	if noAuthRoute {
		s.apply(State{User: nil, Loading: false}, nil)
	} else {
		out := taskrace.Run(raceCtx, s.initTimeout, func(ctx context.Context) (*backend.Session, error) {
			return s.provider.GetSession(ctx)
		})

		switch out.Status {
		case taskrace.TimedOut:
			s.log.Warn().Msg("session initialization timed out, using fallback")
			s.apply(State{User: nil, Loading: false, Err: timeoutErrText}, nil)
		case taskrace.Cancelled:
			// Teardown raced activation; leave state untouched.
			return
		case taskrace.Resolved:
			if out.Err != nil {
				s.log.Error().Err(out.Err).Msg("session initialization failed")
				s.apply(State{User: nil, Loading: false, Err: out.Err.Error()}, nil)
			} else {
				s.apply(stateFromSession(out.Value), out.Value)
			}
		}
	}

	// The change stream keeps the snapshot current after the initial
	// resolution. Later events always win; there is no ordering check
	// beyond delivery order.
	sub := s.provider.OnAuthStateChange(func(event backend.ChangeEvent, session *backend.Session) {
		s.log.Debug().Str("event", string(event)).Msg("auth state changed")
		s.apply(stateFromSession(session), session)
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	s.sub = sub
	s.mu.Unlock()
}

func stateFromSession(session *backend.Session) State {
	if session == nil {
		return State{User: nil, Loading: false}
	}
	return State{User: session.User, Loading: false}
}

// apply is the single mutation point; it refuses to run once the
// store is closed.
func (s *Store) apply(state State, session *backend.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state = state
	s.session = session
}

func (s *Store) setLoading(loading bool, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.Loading = loading
	s.state.Err = errText
}

// State returns a snapshot of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the provider session backing the current state, nil
// when signed out.
func (s *Store) Session() *backend.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SignIn delegates to the provider and reports the outcome as a
// result, never an escaping failure. The signed-in user itself lands
// in the state via the provider's change event.
func (s *Store) SignIn(ctx context.Context, email, password string) backend.AuthResult {
	s.setLoading(true, "")

	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.setLoading(false, err.Error())
		return backend.AuthResult{Err: err}
	}

	s.setLoading(false, "")
	return backend.AuthResult{Data: session}
}

// SignUp registers a new account through the provider.
func (s *Store) SignUp(ctx context.Context, email, password string, metadata map[string]any) backend.AuthResult {
	s.setLoading(true, "")

	session, err := s.provider.SignUp(ctx, email, password, metadata)
	if err != nil {
		s.setLoading(false, err.Error())
		return backend.AuthResult{Err: err}
	}

	s.setLoading(false, "")
	return backend.AuthResult{Data: session}
}

// SignOut ends the provider session. The signed-out state lands via
// the change event.
func (s *Store) SignOut(ctx context.Context) backend.AuthResult {
	s.setLoading(true, "")

	if err := s.provider.SignOut(ctx); err != nil {
		s.setLoading(false, err.Error())
		return backend.AuthResult{Err: err}
	}

	s.setLoading(false, "")
	return backend.AuthResult{}
}

// Close tears the store down: the pending activation race is
// cancelled, the change-stream subscription removed, and every future
// mutation refused.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancelInit
	sub := s.sub
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Unsubscribe()
	}
}
