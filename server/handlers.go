package server

import (
	"fmt"
	"net/http"

	"github.com/tourcompanion/portal-server/agency"
	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/session"
)

// AuthPageHandler renders the sign-in screen. A message query
// parameter carries notices from sign-up and sign-out flows.
func (s *Server) AuthPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, http.StatusOK, pageData{
			Title:      "Sign in",
			Heading:    "Sign in to TourCompanion",
			Message:    r.URL.Query().Get("message"),
			Error:      r.URL.Query().Get("error"),
			ShowSignIn: true,
		})
	}
}

// ClientPortalHandler serves the public client-facing portal. It
// bypasses the backend entirely: the session store resolves to the
// signed-out state without a provider call and the branding is the
// fixed public default.
func (s *Server) ClientPortalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := session.New(s.providers.NewClient(), s.sessionOpts...)
		defer store.Close()
		store.Activate(r.Context(), true)

		settings := agency.NewStore(s.creators, s.config.OfflineMode(), s.agencyOpts...).
			Load(r.Context(), true, nil)

		renderPage(w, http.StatusOK, pageData{
			Title:    "Virtual Tour",
			Heading:  fmt.Sprintf("Virtual tour %s", r.PathValue("id")),
			Message:  "You are viewing a shared virtual tour.",
			Branding: settings,
		})
	}
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)
		user := entry.Session.State().User
		settings := entry.Agency.Load(r.Context(), false, user)

		renderPage(w, http.StatusOK, pageData{
			Title:    "Dashboard",
			Heading:  "Dashboard",
			Message:  fmt.Sprintf("Signed in as %s", userEmail(user)),
			Branding: settings,
		})
	}
}

func (s *Server) PortalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)
		user := entry.Session.State().User
		settings := entry.Agency.Load(r.Context(), false, user)

		heading := "Portal preview"
		if id := r.PathValue("id"); id != "" {
			heading = fmt.Sprintf("Portal %s", id)
		}
		renderPage(w, http.StatusOK, pageData{
			Title:    "Portal",
			Heading:  heading,
			Branding: settings,
		})
	}
}

func (s *Server) PricingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)
		settings := entry.Agency.Load(r.Context(), false, entry.Session.State().User)
		renderPage(w, http.StatusOK, pageData{
			Title:    "Pricing",
			Heading:  "Pricing",
			Branding: settings,
		})
	}
}

func (s *Server) BillingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)
		settings := entry.Agency.Load(r.Context(), false, entry.Session.State().User)
		renderPage(w, http.StatusOK, pageData{
			Title:    "Billing",
			Heading:  "Billing",
			Branding: settings,
		})
	}
}

func (s *Server) AdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)
		settings := entry.Agency.Load(r.Context(), false, entry.Session.State().User)
		renderPage(w, http.StatusOK, pageData{
			Title:    "Admin",
			Heading:  "Administration",
			Branding: settings,
		})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, http.StatusNotFound, pageData{
			Title:     "Not Found",
			Heading:   "404 - Page Not Found",
			RetryPath: "/",
		})
	}
}

func userEmail(user *backend.User) string {
	if user == nil {
		return "unknown"
	}
	return user.Email
}
