package offline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/backend/offline"
	errs "github.com/tourcompanion/portal-server/internal/errors"
)

func newTestProvider(t *testing.T, options ...offline.Option) *offline.Provider {
	t.Helper()
	opts := append([]offline.Option{
		offline.WithLatency(time.Millisecond),
		offline.WithEventDelay(5 * time.Millisecond),
	}, options...)
	return offline.New(opts...)
}

func TestSignInWithDemoCredentials(t *testing.T) {
	p := newTestProvider(t)

	session, err := p.SignInWithPassword(context.Background(), offline.DemoEmail, "demo123")
	require.NoError(t, err)
	require.NotNil(t, session.User)
	require.Equal(t, offline.DemoUserID, session.User.ID)
	require.Equal(t, offline.DemoEmail, session.User.Email)
	require.NotEmpty(t, session.AccessToken)
}

func TestSignInRejectsOtherCredentials(t *testing.T) {
	p := newTestProvider(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", offline.DemoEmail, "hunter2"},
		{"wrong email", "someone@example.com", "demo123"},
		{"both wrong", "someone@example.com", "hunter2"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session, err := p.SignInWithPassword(context.Background(), tc.email, tc.password)
			require.ErrorIs(t, err, errs.ErrInvalidCredentials)
			require.Nil(t, session)
		})
	}
}

func TestGetSessionReturnsDemoUser(t *testing.T) {
	p := newTestProvider(t)

	session, err := p.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session.User)
	require.Equal(t, offline.DemoUserID, session.User.ID)
}

func TestGetSessionHonoursContextCancellation(t *testing.T) {
	p := offline.New(offline.WithLatency(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := p.GetSession(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMintedTokenCarriesRoleClaim(t *testing.T) {
	p := newTestProvider(t)

	session, err := p.GetSession(context.Background())
	require.NoError(t, err)

	claims, err := p.ParseToken(context.Background(), session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, offline.DemoUserID, claims["sub"])
	require.Equal(t, offline.DemoRole, claims["role"])
}

func TestParseTokenRejectsForeignToken(t *testing.T) {
	p := newTestProvider(t)
	other := newTestProvider(t)

	session, err := other.GetSession(context.Background())
	require.NoError(t, err)

	_, err = p.ParseToken(context.Background(), session.AccessToken)
	require.Error(t, err)
}

func TestOnAuthStateChangeEmitsDelayedSignIn(t *testing.T) {
	p := newTestProvider(t)

	var mu sync.Mutex
	var events []backend.ChangeEvent
	sub := p.OnAuthStateChange(func(event backend.ChangeEvent, session *backend.Session) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	})
	defer sub.Unsubscribe()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1 && events[0] == backend.EventSignedIn
	}, time.Second, time.Millisecond)
}

func TestUnsubscribeStopsDelayedEvent(t *testing.T) {
	p := newTestProvider(t, offline.WithEventDelay(20*time.Millisecond))

	var fired sync.Map
	sub := p.OnAuthStateChange(func(event backend.ChangeEvent, session *backend.Session) {
		fired.Store("fired", true)
	})
	sub.Unsubscribe()

	time.Sleep(50 * time.Millisecond)
	_, ok := fired.Load("fired")
	require.False(t, ok)
}

func TestSignOutClearsSessionAndNotifies(t *testing.T) {
	p := newTestProvider(t, offline.WithEventDelay(time.Hour))

	_, err := p.SignInWithPassword(context.Background(), offline.DemoEmail, "demo123")
	require.NoError(t, err)

	var mu sync.Mutex
	var last backend.ChangeEvent
	sub := p.OnAuthStateChange(func(event backend.ChangeEvent, session *backend.Session) {
		mu.Lock()
		defer mu.Unlock()
		last = event
	})
	defer sub.Unsubscribe()

	require.NoError(t, p.SignOut(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, backend.EventSignedOut, last)
}
