// Package providerfakes provides a scriptable backend.AuthProvider for
// tests. Each operation can be given a canned response, an error, and
// a delay so activation races and teardown timing can be exercised
// deterministically.
package providerfakes

import (
	"context"
	"sync"
	"time"

	"github.com/tourcompanion/portal-server/backend"
)

var _ backend.AuthProvider = (*FakeProvider)(nil)

type FakeProvider struct {
	hub *backend.ChangeHub

	mu sync.Mutex

	Session      *backend.Session
	SessionErr   error
	SessionDelay time.Duration

	SignInSession *backend.Session
	SignInErr     error
	SignInDelay   time.Duration

	SignUpSession *backend.Session
	SignUpErr     error

	SignOutErr error

	getSessionCalls int
	signInCalls     int
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{hub: backend.NewChangeHub()}
}

func (f *FakeProvider) GetSession(ctx context.Context) (*backend.Session, error) {
	f.mu.Lock()
	f.getSessionCalls++
	delay := f.SessionDelay
	session, err := f.Session, f.SessionErr
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return session, err
}

func (f *FakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	delay := f.SignInDelay
	session, err := f.SignInSession, f.SignInErr
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if session != nil {
		f.hub.Emit(backend.EventSignedIn, session)
	}
	return session, nil
}

func (f *FakeProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	return f.SignUpSession, nil
}

func (f *FakeProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	err := f.SignOutErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.hub.Emit(backend.EventSignedOut, nil)
	return nil
}

func (f *FakeProvider) OnAuthStateChange(cb backend.ChangeCallback) backend.Subscription {
	return f.hub.Subscribe(cb)
}

// Emit pushes a change event to all subscribers, as if the provider's
// auth state changed out from under the store.
func (f *FakeProvider) Emit(event backend.ChangeEvent, session *backend.Session) {
	f.hub.Emit(event, session)
}

func (f *FakeProvider) GetSessionCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getSessionCalls
}

func (f *FakeProvider) SignInCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls
}
