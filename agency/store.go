package agency

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/internal/taskrace"
	"github.com/tourcompanion/portal-server/internal/utils"
)

// DefaultLoadTimeout bounds the tenant record lookup; past it the
// defaults are served instead.
const DefaultLoadTimeout = 3 * time.Second

// Store caches one login session's agency settings. The in-memory
// copy has no TTL; it is reloaded only on a fresh Load and mutated by
// Update.
type Store struct {
	repo        CreatorRepo
	offline     bool
	loadTimeout time.Duration
	log         zerolog.Logger

	mu       sync.Mutex
	settings Settings
	loaded   bool
}

// Option modifies a Store instance.
type Option func(*Store)

// WithLoadTimeout overrides the lookup timeout (primarily for testing).
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) { s.loadTimeout = d }
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.log = logger }
}

// NewStore builds a settings store over the tenant record repo.
// offline switches the store to the fixed demo branding.
func NewStore(repo CreatorRepo, offline bool, options ...Option) *Store {
	s := &Store{
		repo:        repo,
		offline:     offline,
		loadTimeout: DefaultLoadTimeout,
		log:         log.With().Str("component", "agency-store").Logger(),
		settings:    Defaults(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Load resolves the settings for the given viewer, first match wins:
// public portal route, lookup-vs-timeout race, offline demo branding,
// signed-out defaults, or the creator record with per-field fallback.
// Load never fails; every path degrades to defaults. The result is
// cached for the lifetime of the store: this store lives as long as
// one login session, so a reload means a fresh store.
func (s *Store) Load(ctx context.Context, publicPortalRoute bool, user *backend.User) Settings {
	s.mu.Lock()
	if s.loaded {
		settings := s.settings
		s.mu.Unlock()
		return settings
	}
	s.mu.Unlock()

	if publicPortalRoute {
		return s.store(PublicPortalDefaults())
	}

	out := taskrace.Run(ctx, s.loadTimeout, func(ctx context.Context) (Settings, error) {
		return s.resolve(ctx, user), nil
	})
	if out.Status != taskrace.Resolved {
		s.log.Warn().Stringer("status", out.Status).Msg("agency settings load did not resolve, using defaults")
		return s.store(Defaults())
	}
	return s.store(out.Value)
}

func (s *Store) resolve(ctx context.Context, user *backend.User) Settings {
	if s.offline {
		return DemoSettings()
	}

	if user == nil {
		return Defaults()
	}

	record, err := s.repo.GetByUserID(ctx, user.ID)
	if err != nil || record == nil {
		// Absent records and lookup failures both degrade to defaults
		// seeded with the user's own contact address.
		settings := Defaults()
		if user.Email != "" {
			settings.ContactEmail = user.Email
		}
		if err != nil {
			s.log.Debug().Err(err).Str("user_id", user.ID).Msg("creator record unavailable, using defaults")
		}
		return settings
	}

	settings := Settings{
		AgencyName:     utils.Value(record.AgencyName),
		AgencyLogoPath: utils.Value(record.AgencyLogo),
		ContactEmail:   utils.Value(record.ContactEmail),
	}
	if settings.AgencyName == "" {
		settings.AgencyName = fallbackAgencyName
	}
	if settings.AgencyLogoPath == "" {
		settings.AgencyLogoPath = DefaultLogoPath
	}
	if settings.ContactEmail == "" {
		if user.Email != "" {
			settings.ContactEmail = user.Email
		} else {
			settings.ContactEmail = DefaultContact
		}
	}
	return settings
}

func (s *Store) store(settings Settings) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.loaded = true
	return settings
}

// Settings returns the current in-memory copy.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Update applies the change locally first, so callers see it
// immediately, then persists best-effort. Persistence failures are
// logged and never rolled back or surfaced; the local copy is
// authoritative for the rest of this login session.
func (s *Store) Update(ctx context.Context, userID string, partial Partial) Settings {
	s.mu.Lock()
	if partial.AgencyName != nil {
		s.settings.AgencyName = *partial.AgencyName
	}
	if partial.AgencyLogoPath != nil {
		s.settings.AgencyLogoPath = *partial.AgencyLogoPath
	}
	if partial.ContactEmail != nil {
		s.settings.ContactEmail = *partial.ContactEmail
	}
	applied := s.settings
	s.mu.Unlock()

	if s.offline || userID == "" {
		return applied
	}

	if err := s.repo.UpdateByUserID(ctx, userID, partial); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("agency settings persistence failed, keeping local copy")
	}
	return applied
}
