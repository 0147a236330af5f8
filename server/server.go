package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tourcompanion/portal-server/agency"
	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/guard"
	"github.com/tourcompanion/portal-server/internal/config"
	"github.com/tourcompanion/portal-server/session"
	"github.com/tourcompanion/portal-server/session/registry"
)

const sessionCookieName = "tc_session"

// Deps holds the collaborators the server composes: the provider
// factory (hosted or offline), the login-session registry, the tenant
// record store, and the route guard.
type Deps struct {
	Providers backend.ProviderFactory
	Sessions  registry.Repo
	Creators  agency.CreatorRepo
	Guard     *guard.Guard
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config

	providers backend.ProviderFactory
	sessions  registry.Repo
	creators  agency.CreatorRepo
	guard     *guard.Guard

	sessionOpts []session.Option
	agencyOpts  []agency.Option
}

// Option modifies a Server instance.
type Option func(*Server)

// WithSessionOptions forwards options to every session store the
// server creates (primarily for testing).
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Server) { s.sessionOpts = opts }
}

// WithAgencyOptions forwards options to every agency store the server
// creates (primarily for testing).
func WithAgencyOptions(opts ...agency.Option) Option {
	return func(s *Server) { s.agencyOpts = opts }
}

func New(cfg config.Config, deps Deps, options ...Option) (*Server, error) {
	if deps.Providers == nil {
		return nil, errors.New("[server.New] provider factory is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[server.New] session registry is required")
	}
	if deps.Creators == nil {
		return nil, errors.New("[server.New] creator repo is required")
	}
	if deps.Guard == nil {
		return nil, errors.New("[server.New] route guard is required")
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		providers: deps.Providers,
		sessions:  deps.Sessions,
		creators:  deps.Creators,
		guard:     deps.Guard,
	}

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}

// loginSession resolves the registry entry for the request's cookie,
// nil when the request carries no live login session.
func (s *Server) loginSession(r *http.Request) *registry.Entry {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	entry, err := s.sessions.Get(cookie.Value)
	if err != nil {
		return nil
	}
	return entry
}
