// Package guard decides whether a session may reach a protected
// screen: role gating plus the render-policy precedence that turns a
// session snapshot into exactly one of loading, error, redirect,
// denied, or allowed.
package guard

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tourcompanion/portal-server/backend"
)

// Role names a required access level for a route.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCreator Role = "creator"
	RoleUser    Role = "user"
)

// RoleGate evaluates whether the session's user satisfies the
// required role. Implementations are consulted only when a role is
// required and a user is present.
type RoleGate interface {
	Check(ctx context.Context, session *backend.Session, required Role) (bool, error)
}

// VacuousGate allows any authenticated user regardless of the
// required role. This is the current product policy; the claims gate
// exists for when real role enforcement is switched on.
type VacuousGate struct{}

var _ RoleGate = VacuousGate{}

func (VacuousGate) Check(ctx context.Context, session *backend.Session, required Role) (bool, error) {
	return true, nil
}

// ClaimsParser verifies an access token and returns its claims.
type ClaimsParser func(ctx context.Context, raw string) (map[string]any, error)

// ClaimsGate reads the role claim from the verified access token.
// Admin satisfies every requirement, creator satisfies creator and
// user, everything else satisfies only user.
type ClaimsGate struct {
	parse ClaimsParser
}

var _ RoleGate = (*ClaimsGate)(nil)

func NewClaimsGate(parse ClaimsParser) (*ClaimsGate, error) {
	if parse == nil {
		return nil, errors.New("[NewClaimsGate] claims parser is required")
	}
	return &ClaimsGate{parse: parse}, nil
}

func (g *ClaimsGate) Check(ctx context.Context, session *backend.Session, required Role) (bool, error) {
	if session == nil || session.AccessToken == "" {
		return false, errors.New("[ClaimsGate.Check] no access token")
	}

	claims, err := g.parse(ctx, session.AccessToken)
	if err != nil {
		return false, errors.Wrap(err, "[ClaimsGate.Check] parse")
	}

	role, _ := claims["role"].(string)
	return roleSatisfies(Role(role), required), nil
}

func roleSatisfies(have, required Role) bool {
	switch required {
	case RoleAdmin:
		return have == RoleAdmin
	case RoleCreator:
		return have == RoleAdmin || have == RoleCreator
	default:
		return true
	}
}
