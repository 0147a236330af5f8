package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	agencysqlite "github.com/tourcompanion/portal-server/agency/sqlite"
	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/backend/hosted"
	"github.com/tourcompanion/portal-server/backend/offline"
	"github.com/tourcompanion/portal-server/guard"
	"github.com/tourcompanion/portal-server/internal/config"
	"github.com/tourcompanion/portal-server/server"
	"github.com/tourcompanion/portal-server/session/registry"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

// app is the process-wide context object: every collaborator is
// created here once and injected explicitly, and teardown happens in
// shutdown, in reverse order of construction.
type app struct {
	config    config.Config
	creators  *agencysqlite.Store
	sessions  registry.Repo
	providers backend.ProviderFactory
	guard     *guard.Guard
	server    *http.Server
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	a, err := newApp(c)
	if err != nil {
		return err
	}

	go listenAndServe(a.server)
	waitForStopSignal()
	return shutdown(a)
}

func newApp(c config.Config) (*app, error) {
	a := &app{
		config:   c,
		sessions: registry.NewInMemory(),
	}

	creators, err := agencysqlite.Open(filepath.Join(c.GetDataFolder(), "creators.db"))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] open creator store")
	}
	a.creators = creators

	var parseToken guard.ClaimsParser
	if c.OfflineMode() {
		log.Info().Msg("offline mode enabled: using local demo provider")
		log.Info().Msgf("demo credentials: %s / demo123", offline.DemoEmail)
		factory := offline.NewFactory()
		a.providers = factory
		parseToken = factory.Provider().ParseToken
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		service, err := hosted.NewService(ctx, c)
		if err != nil {
			_ = creators.Close()
			return nil, errors.Wrap(err, "[newApp] connect to hosted provider")
		}
		a.providers = service
		parseToken = service.ParseToken
	}

	gate, err := buildRoleGate(c, parseToken)
	if err != nil {
		_ = creators.Close()
		return nil, err
	}
	a.guard = guard.New(gate)

	deps := server.Deps{
		Providers: a.providers,
		Sessions:  a.sessions,
		Creators:  a.creators,
		Guard:     a.guard,
	}
	handler, err := server.New(c, deps)
	if err != nil {
		_ = creators.Close()
		return nil, errors.Wrap(err, "[newApp] create server")
	}
	a.server = &http.Server{Addr: c.GetPort(), Handler: handler}

	return a, nil
}

func buildRoleGate(c config.Config, parseToken guard.ClaimsParser) (guard.RoleGate, error) {
	switch c.GetRoleCheckStrategy() {
	case config.RoleCheckClaims:
		return guard.NewClaimsGate(parseToken)
	case config.RoleCheckVacuous:
		return guard.VacuousGate{}, nil
	default:
		return nil, errors.Errorf("[buildRoleGate] unknown role check strategy %q", c.GetRoleCheckStrategy())
	}
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(a *app) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	a.sessions.CloseAll()
	if err := a.creators.Close(); err != nil {
		return errors.Wrap(err, "creators.Close")
	}
	return nil
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
