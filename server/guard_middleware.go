package server

import (
	"context"
	"net/http"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/guard"
	"github.com/tourcompanion/portal-server/session"
	"github.com/tourcompanion/portal-server/session/registry"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyEntry stores the request's login-session registry entry
const ContextKeyEntry ContextKey = "login_session"

// GuardRoute gates a route behind the route guard: the session
// snapshot and role gate resolve to exactly one of loading, error,
// redirect, denied, or the protected handler.
func (s *Server) GuardRoute(required guard.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			entry := s.loginSession(r)

			var st session.State
			var sess *backend.Session
			if entry != nil {
				st = entry.Session.State()
				sess = entry.Session.Session()
			}

			result := s.guard.Evaluate(r.Context(), st, sess, required)
			switch result.Decision {
			case guard.DecisionLoading:
				renderLoading(w)
			case guard.DecisionError:
				renderAuthError(w, result.Reason, r.URL.Path)
			case guard.DecisionRedirect:
				http.Redirect(w, r, RouteAuth, http.StatusSeeOther)
			case guard.DecisionDenied:
				renderAccessDenied(w, result.Reason)
			default:
				ctx := context.WithValue(r.Context(), ContextKeyEntry, entry)
				next(w, r.WithContext(ctx))
			}
		}
	}
}

// requestEntry returns the registry entry GuardRoute stashed on the
// request context.
func requestEntry(r *http.Request) *registry.Entry {
	entry, _ := r.Context().Value(ContextKeyEntry).(*registry.Entry)
	return entry
}
