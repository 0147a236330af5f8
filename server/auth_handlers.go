package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/tourcompanion/portal-server/agency"
	errs "github.com/tourcompanion/portal-server/internal/errors"
	"github.com/tourcompanion/portal-server/session"
	"github.com/tourcompanion/portal-server/session/registry"
)

// SignInHandler creates the login session: a fresh provider client
// and session store, activated and signed in, then registered under a
// new cookie.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")

		store := session.New(s.providers.NewClient(), s.sessionOpts...)
		store.Activate(r.Context(), false)

		result := store.SignIn(r.Context(), email, password)
		if result.Err != nil {
			store.Close()
			message := "Sign in failed - please try again."
			if errs.Is(result.Err, errs.ErrInvalidCredentials) {
				message = "Invalid email or password."
			}
			renderPage(w, http.StatusUnauthorized, pageData{
				Title:      "Sign in",
				Heading:    "Sign in to TourCompanion",
				Error:      message,
				ShowSignIn: true,
			})
			return
		}

		entry := &registry.Entry{
			ID:        registry.NewID(),
			Session:   store,
			Agency:    agency.NewStore(s.creators, s.config.OfflineMode(), s.agencyOpts...),
			CreatedAt: time.Now(),
		}
		if err := s.sessions.Put(entry); err != nil {
			store.Close()
			renderFallback(w, RouteAuth)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    entry.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

// SignUpHandler registers an account with the provider. The user is
// sent back to the sign-in screen; providers generally require email
// confirmation before the first sign-in.
func (s *Server) SignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")

		store := session.New(s.providers.NewClient(), s.sessionOpts...)
		defer store.Close()
		store.Activate(r.Context(), false)

		result := store.SignUp(r.Context(), email, password, nil)
		if result.Err != nil {
			renderPage(w, http.StatusUnprocessableEntity, pageData{
				Title:      "Sign up",
				Heading:    "Sign in to TourCompanion",
				Error:      "Sign up failed - please try again.",
				ShowSignIn: true,
			})
			return
		}

		query := url.Values{"message": {"Account created. Check your email, then sign in."}}
		http.Redirect(w, r, RouteAuth+"?"+query.Encode(), http.StatusSeeOther)
	}
}

// SignOutHandler ends the login session and clears the cookie.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if entry := s.loginSession(r); entry != nil {
			entry.Session.SignOut(r.Context())
			_ = s.sessions.Delete(entry.ID)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		http.Redirect(w, r, RouteAuth, http.StatusSeeOther)
	}
}
