// Package offline is the local stand-in for the hosted auth provider,
// used in development and whenever no backend is configured. Every
// call pays a simulated latency so the offline path exercises the same
// asynchronous shape as the real one, and access tokens are real HS256
// JWTs so downstream token handling needs no special-casing.
package offline

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/tourcompanion/portal-server/backend"
	errs "github.com/tourcompanion/portal-server/internal/errors"
)

const (
	// DemoEmail and DemoUserID identify the only account the offline
	// provider knows about.
	DemoEmail  = "demo@tourcompanion.com"
	DemoUserID = "offline-user-123"
	DemoRole   = "authenticated"

	demoPassword = "demo123"

	// DefaultLatency is applied to every provider call.
	DefaultLatency = 500 * time.Millisecond

	// defaultEventDelay is how long after subscription the provider
	// emits its SIGNED_IN event.
	defaultEventDelay = time.Second

	tokenTTL = time.Hour
)

// Provider implements backend.AuthProvider entirely in-process.
type Provider struct {
	latency    time.Duration
	eventDelay time.Duration
	nowTime    func() time.Time
	signingKey []byte
	demoHash   []byte

	hub *backend.ChangeHub

	mu      sync.Mutex
	current *backend.Session
}

// Option modifies a Provider instance.
type Option func(*Provider)

// WithLatency overrides the simulated call latency (primarily for testing).
func WithLatency(d time.Duration) Option {
	return func(p *Provider) { p.latency = d }
}

// WithEventDelay overrides the delay before the post-subscription
// SIGNED_IN event (primarily for testing).
func WithEventDelay(d time.Duration) Option {
	return func(p *Provider) { p.eventDelay = d }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) { p.nowTime = nowFunc }
}

func New(options ...Option) *Provider {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.MinCost)
	if err != nil {
		// bcrypt.GenerateFromPassword only fails for invalid cost.
		panic(err)
	}

	p := &Provider{
		latency:    DefaultLatency,
		eventDelay: defaultEventDelay,
		nowTime:    time.Now,
		signingKey: []byte(uuid.New().String()),
		demoHash:   hash,
		hub:        backend.NewChangeHub(),
	}

	for _, opt := range options {
		opt(p)
	}
	return p
}

var _ backend.AuthProvider = (*Provider)(nil)

// simulateDelay blocks for the configured latency or until ctx is done.
func (p *Provider) simulateDelay(ctx context.Context) error {
	timer := time.NewTimer(p.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) demoUser() *backend.User {
	return &backend.User{
		ID:        DemoUserID,
		Email:     DemoEmail,
		CreatedAt: p.nowTime(),
		Role:      DemoRole,
	}
}

func (p *Provider) demoSession() (*backend.Session, error) {
	user := p.demoUser()
	token, err := p.mintToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.demoSession] mintToken")
	}
	return &backend.Session{
		User:         user,
		AccessToken:  token,
		RefreshToken: "offline-refresh-token",
	}, nil
}

func (p *Provider) mintToken(user *backend.User) (string, error) {
	now := p.nowTime()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
}

// ParseToken verifies a token this provider minted and returns its
// claims. Used by the claims role-check strategy in offline mode.
func (p *Provider) ParseToken(_ context.Context, raw string) (map[string]any, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.signingKey, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.ParseToken] jwt.Parse")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("[Provider.ParseToken] unexpected claims type")
	}
	return claims, nil
}

// GetSession always reports the demo user as signed in, mirroring the
// behaviour the dashboard expects from offline mode.
func (p *Provider) GetSession(ctx context.Context) (*backend.Session, error) {
	if err := p.simulateDelay(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current != nil {
		return current, nil
	}

	return p.demoSession()
}

// SignInWithPassword accepts only the fixed demo credential pair.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	if err := p.simulateDelay(ctx); err != nil {
		return nil, err
	}

	if email != DemoEmail || bcrypt.CompareHashAndPassword(p.demoHash, []byte(password)) != nil {
		return nil, errors.Wrapf(errs.ErrInvalidCredentials, "use %s / %s", DemoEmail, demoPassword)
	}

	session, err := p.demoSession()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	p.hub.Emit(backend.EventSignedIn, session)
	return session, nil
}

// SignUp pretends to register and hands back the demo user without a
// live session, matching a provider that requires email confirmation.
func (p *Provider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*backend.Session, error) {
	if err := p.simulateDelay(ctx); err != nil {
		return nil, err
	}
	return &backend.Session{User: p.demoUser()}, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.simulateDelay(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.hub.Emit(backend.EventSignedOut, nil)
	return nil
}

// OnAuthStateChange subscribes cb to the change stream and, after the
// configured delay, emits a SIGNED_IN event for the demo user so a
// freshly mounted store settles into the signed-in state on its own.
func (p *Provider) OnAuthStateChange(cb backend.ChangeCallback) backend.Subscription {
	sub := p.hub.Subscribe(cb)

	timer := time.AfterFunc(p.eventDelay, func() {
		session, err := p.demoSession()
		if err != nil {
			return
		}
		cb(backend.EventSignedIn, session)
	})

	return &offlineSubscription{inner: sub, timer: timer}
}

type offlineSubscription struct {
	inner backend.Subscription
	timer *time.Timer
	once  sync.Once
}

func (s *offlineSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.timer.Stop()
		s.inner.Unsubscribe()
	})
}

// Factory hands out the process-wide offline provider. Offline mode
// has a single demo identity, so every login session shares one
// provider, one signing key, and one change stream.
type Factory struct {
	provider *Provider
}

func NewFactory(options ...Option) *Factory {
	return &Factory{provider: New(options...)}
}

var _ backend.ProviderFactory = (*Factory)(nil)

func (f *Factory) NewClient() backend.AuthProvider {
	return f.provider
}

// Provider exposes the shared provider for wiring the claims
// role-check strategy.
func (f *Factory) Provider() *Provider {
	return f.provider
}
