// Package backend defines the surface this service consumes from its
// auth provider: session retrieval, credential operations, and the
// auth-state change stream. The hosted client and the offline fallback
// both implement AuthProvider so the stores above them carry a single
// code path.
package backend

import (
	"context"
	"time"
)

// User is the authenticated identity as reported by the provider.
// Beyond ID and email this layer treats it as opaque.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Role      string    `json:"role"`
}

// Session pairs a user with the tokens the provider issued for them.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthResult is the non-throwing result shape for credential
// operations: exactly one of Data and Err is set.
type AuthResult struct {
	Data *Session
	Err  error
}

// ChangeEvent names an auth-state transition on the change stream.
type ChangeEvent string

const (
	EventSignedIn       ChangeEvent = "SIGNED_IN"
	EventSignedOut      ChangeEvent = "SIGNED_OUT"
	EventTokenRefreshed ChangeEvent = "TOKEN_REFRESHED"
)

// ChangeCallback receives auth-state change notifications. The session
// is nil for EventSignedOut.
type ChangeCallback func(event ChangeEvent, session *Session)

// Subscription is a handle on a change-stream registration.
type Subscription interface {
	Unsubscribe()
}

// AuthProvider is the external auth collaborator. Implementations must
// return errors rather than panic; callers convert them into their own
// state shapes.
type AuthProvider interface {
	GetSession(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(cb ChangeCallback) Subscription
}

// ProviderFactory builds one AuthProvider per login session. The
// factory itself is process-wide; the clients it hands out each hold
// their own current-session view.
type ProviderFactory interface {
	NewClient() AuthProvider
}
