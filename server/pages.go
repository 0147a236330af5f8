package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tourcompanion/portal-server/agency"
)

const contentTypeHTML = "text/html; charset=utf-8"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - TourCompanion</title>
{{if .Refresh}}<meta http-equiv="refresh" content="1">{{end}}
</head>
<body>
<header>
<img src="{{.Branding.AgencyLogoPath}}" alt="{{.Branding.AgencyName}}" height="32">
<strong>{{.Branding.AgencyName}}</strong>
</header>
<main>
<h1>{{.Heading}}</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .ShowSignIn}}
<form method="post" action="/auth/sign-in">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>
<form method="post" action="/auth/sign-up">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign up</button>
</form>
{{end}}
{{if .RetryPath}}<p><a href="{{.RetryPath}}">Retry</a></p>{{end}}
</main>
<footer>Contact: <a href="mailto:{{.Branding.ContactEmail}}">{{.Branding.ContactEmail}}</a></footer>
</body>
</html>
`))

type pageData struct {
	Title      string
	Heading    string
	Message    string
	Error      string
	Refresh    bool
	ShowSignIn bool
	RetryPath  string
	Branding   agency.Settings
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	if data.Branding.AgencyName == "" {
		data.Branding = agency.Defaults()
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Err(err).Msg("failed to render page template")
	}
}

func renderLoading(w http.ResponseWriter) {
	renderPage(w, http.StatusOK, pageData{
		Title:   "Loading",
		Heading: "Verifying access...",
		Refresh: true,
	})
}

func renderAuthError(w http.ResponseWriter, message, retryPath string) {
	renderPage(w, http.StatusInternalServerError, pageData{
		Title:     "Authentication Error",
		Heading:   "Authentication Error",
		Error:     message,
		RetryPath: retryPath,
	})
}

func renderAccessDenied(w http.ResponseWriter, reason string) {
	message := "You don't have the required permissions to access this area."
	if reason == "timeout" {
		message = "Role verification timed out - please try again."
	}
	renderPage(w, http.StatusForbidden, pageData{
		Title:   "Access Denied",
		Heading: "Access Denied",
		Message: message,
	})
}

// renderFallback is the last-resort screen substituted for any
// unhandled failure during rendering.
func renderFallback(w http.ResponseWriter, retryPath string) {
	renderPage(w, http.StatusInternalServerError, pageData{
		Title:     "Something went wrong",
		Heading:   "Something went wrong",
		Message:   "The page could not be displayed. Reloading usually fixes this.",
		RetryPath: retryPath,
	})
}
