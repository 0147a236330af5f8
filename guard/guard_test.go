package guard_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/guard"
	"github.com/tourcompanion/portal-server/session"
)

func newGuard(t *testing.T, gate guard.RoleGate, options ...guard.Option) *guard.Guard {
	t.Helper()
	options = append([]guard.Option{guard.WithSettleDelay(time.Millisecond)}, options...)
	return guard.New(gate, options...)
}

func signedInState(role string) (session.State, *backend.Session) {
	user := &backend.User{ID: "user-1", Email: "owner@acme.com", Role: role}
	sess := &backend.Session{User: user, AccessToken: "token-1"}
	return session.State{User: user}, sess
}

func roleClaims(role string) guard.ClaimsParser {
	return func(ctx context.Context, raw string) (map[string]any, error) {
		return map[string]any{"role": role}, nil
	}
}

// blockingGate never answers; only a timeout resolves the check.
type blockingGate struct{}

func (blockingGate) Check(ctx context.Context, session *backend.Session, required guard.Role) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func TestLoadingSessionShortCircuits(t *testing.T) {
	g := newGuard(t, guard.VacuousGate{})

	result := g.Evaluate(context.Background(), session.State{Loading: true}, nil, guard.RoleAdmin)
	require.Equal(t, guard.DecisionLoading, result.Decision)
}

func TestSessionErrorBeatsRedirect(t *testing.T) {
	g := newGuard(t, guard.VacuousGate{})

	st := session.State{User: nil, Err: "authentication timeout - please try again"}
	result := g.Evaluate(context.Background(), st, nil, "")
	require.Equal(t, guard.DecisionError, result.Decision)
	require.Equal(t, st.Err, result.Reason)
}

func TestNilUserRedirectsForEveryRequiredRole(t *testing.T) {
	g := newGuard(t, guard.VacuousGate{})

	for _, required := range []guard.Role{"", guard.RoleUser, guard.RoleCreator, guard.RoleAdmin} {
		result := g.Evaluate(context.Background(), session.State{}, nil, required)
		require.Equal(t, guard.DecisionRedirect, result.Decision, "required=%q", required)
	}
}

func TestAuthenticatedUserAllowedWithoutRequiredRole(t *testing.T) {
	g := newGuard(t, guard.VacuousGate{})

	st, sess := signedInState("authenticated")
	result := g.Evaluate(context.Background(), st, sess, "")
	require.Equal(t, guard.DecisionAllowed, result.Decision)
}

func TestVacuousGateAllowsAnyAuthenticatedUser(t *testing.T) {
	g := newGuard(t, guard.VacuousGate{})

	st, sess := signedInState("authenticated")
	for _, required := range []guard.Role{guard.RoleUser, guard.RoleCreator, guard.RoleAdmin} {
		result := g.Evaluate(context.Background(), st, sess, required)
		require.Equal(t, guard.DecisionAllowed, result.Decision, "required=%q", required)
	}
}

func TestClaimsGateDeniesInsufficientRole(t *testing.T) {
	gate, err := guard.NewClaimsGate(roleClaims("user"))
	require.NoError(t, err)
	g := newGuard(t, gate)

	st, sess := signedInState("user")
	result := g.Evaluate(context.Background(), st, sess, guard.RoleCreator)
	require.Equal(t, guard.DecisionDenied, result.Decision)
	require.Equal(t, guard.ReasonInsufficient, result.Reason)
}

func TestClaimsGateAllowsSufficientRole(t *testing.T) {
	gate, err := guard.NewClaimsGate(roleClaims("admin"))
	require.NoError(t, err)
	g := newGuard(t, gate)

	st, sess := signedInState("admin")
	result := g.Evaluate(context.Background(), st, sess, guard.RoleCreator)
	require.Equal(t, guard.DecisionAllowed, result.Decision)
}

func TestClaimsGateParserErrorDenies(t *testing.T) {
	gate, err := guard.NewClaimsGate(func(ctx context.Context, raw string) (map[string]any, error) {
		return nil, errors.New("signature invalid")
	})
	require.NoError(t, err)
	g := newGuard(t, gate)

	st, sess := signedInState("admin")
	result := g.Evaluate(context.Background(), st, sess, guard.RoleAdmin)
	require.Equal(t, guard.DecisionDenied, result.Decision)
	require.Equal(t, guard.ReasonInsufficient, result.Reason)
}

func TestRoleCheckTimeoutDenies(t *testing.T) {
	g := newGuard(t, blockingGate{}, guard.WithCheckTimeout(10*time.Millisecond))

	st, sess := signedInState("admin")
	result := g.Evaluate(context.Background(), st, sess, guard.RoleAdmin)
	require.Equal(t, guard.DecisionDenied, result.Decision)
	require.Equal(t, guard.ReasonTimeout, result.Reason)
}

func TestNewClaimsGateRequiresParser(t *testing.T) {
	_, err := guard.NewClaimsGate(nil)
	require.Error(t, err)
}

func TestClaimsGateRequiresAccessToken(t *testing.T) {
	gate, err := guard.NewClaimsGate(roleClaims("admin"))
	require.NoError(t, err)

	ok, err := gate.Check(context.Background(), nil, guard.RoleAdmin)
	require.Error(t, err)
	require.False(t, ok)
}

func TestRoleHierarchy(t *testing.T) {
	tests := []struct {
		name     string
		have     string
		required guard.Role
		want     bool
	}{
		{"admin satisfies admin", "admin", guard.RoleAdmin, true},
		{"admin satisfies creator", "admin", guard.RoleCreator, true},
		{"admin satisfies user", "admin", guard.RoleUser, true},
		{"creator denied admin", "creator", guard.RoleAdmin, false},
		{"creator satisfies creator", "creator", guard.RoleCreator, true},
		{"creator satisfies user", "creator", guard.RoleUser, true},
		{"user denied creator", "user", guard.RoleCreator, false},
		{"user satisfies user", "user", guard.RoleUser, true},
		{"unknown role satisfies user", "authenticated", guard.RoleUser, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gate, err := guard.NewClaimsGate(roleClaims(tc.have))
			require.NoError(t, err)

			_, sess := signedInState(tc.have)
			ok, err := gate.Check(context.Background(), sess, tc.required)
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}
