package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tourcompanion/portal-server/agency"
)

const contentTypeJSON = "application/json; charset=utf-8"

// AgencySettingsGetHandler returns the viewer's current agency
// branding, resolved through the settings store's fallback ladder.
func (s *Server) AgencySettingsGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)
		user := entry.Session.State().User
		settings := entry.Agency.Load(r.Context(), IsClientPortalPath(r.URL.Path), user)
		writeJSON(w, http.StatusOK, settings)
	}
}

// AgencySettingsUpdateHandler applies a sparse settings update. The
// local copy changes immediately; persistence is best-effort and its
// failure is not reported here.
func (s *Server) AgencySettingsUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := requestEntry(r)

		var partial agency.Partial
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
			return
		}

		userID := ""
		if user := entry.Session.State().User; user != nil {
			userID = user.ID
		}

		applied := entry.Agency.Update(r.Context(), userID, partial)
		writeJSON(w, http.StatusOK, applied)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode JSON response")
	}
}
