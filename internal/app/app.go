// Package app provides the application orchestration for ProjectHub.
// It wires configuration, the credential store, the API client and the
// session provider together, and runs the TUI or a one-shot command on top.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/projecthub/internal/api"
	"github.com/gerunddev/projecthub/internal/config"
	"github.com/gerunddev/projecthub/internal/db"
	"github.com/gerunddev/projecthub/internal/devserver"
	"github.com/gerunddev/projecthub/internal/log"
	"github.com/gerunddev/projecthub/internal/screen"
	"github.com/gerunddev/projecthub/internal/session"
	"github.com/gerunddev/projecthub/internal/tui"
)

// ErrNotSignedIn is returned by commands that need a session when there is none.
var ErrNotSignedIn = errors.New("not signed in (run `projecthub login`)")

// App owns the long-lived dependencies of one ProjectHub invocation.
type App struct {
	cfg *config.Config

	logCloser io.Closer
	db        *db.DB
	client    *api.Client
	sessions  *session.Provider

	// runProgram runs the TUI. Replaced in tests.
	runProgram func(m tea.Model) error
}

// Config holds configuration for creating a new App.
type Config struct {
	// ConfigPath is the config file to read. If empty, uses the standard location.
	ConfigPath string

	// APIURLOverride overrides api_url from the config file and environment.
	APIURLOverride string
}

// New creates a new App.
func New(cfg Config) (*App, error) {
	var (
		appConfig *config.Config
		err       error
	)
	if cfg.ConfigPath != "" {
		appConfig, err = config.LoadFromPath(cfg.ConfigPath)
	} else {
		appConfig, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.APIURLOverride != "" {
		appConfig.APIURL = cfg.APIURLOverride
		if err := appConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	return &App{
		cfg:        appConfig,
		runProgram: runAltScreen,
	}, nil
}

func runAltScreen(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Run starts the TUI at the given route ("/dashboard", "/projects/<id>", ...).
// The session gate decides whether the route is actually shown.
func (a *App) Run(ctx context.Context, route string) error {
	if err := a.initDependencies(a.cfg.LogFile); err != nil {
		return err
	}
	defer a.cleanup()

	log.Info("starting tui", "route", route, "api", a.cfg.APIURL)
	model := tui.New(a.sessions, a.client, screen.ParseRoute(route))
	return a.runProgram(model)
}

// Login signs in and stores the credential for later runs.
func (a *App) Login(ctx context.Context, email, password string) (*api.User, error) {
	if err := screen.ValidateLogin(screen.LoginForm{Email: email, Password: password}); err != nil {
		return nil, err
	}
	if err := a.initDependencies(a.cfg.LogFile); err != nil {
		return nil, err
	}
	defer a.cleanup()

	s, err := a.sessions.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

// Logout forgets the stored credential.
func (a *App) Logout(ctx context.Context) error {
	if err := a.initDependencies(a.cfg.LogFile); err != nil {
		return err
	}
	defer a.cleanup()

	a.sessions.Logout()
	return nil
}

// WhoAmI validates the stored credential and returns its user.
func (a *App) WhoAmI(ctx context.Context) (*api.User, error) {
	if err := a.initDependencies(a.cfg.LogFile); err != nil {
		return nil, err
	}
	defer a.cleanup()

	return a.currentUser(ctx)
}

// Dashboard loads the same data the dashboard screen shows.
func (a *App) Dashboard(ctx context.Context) (*screen.DashboardData, error) {
	if err := a.initDependencies(a.cfg.LogFile); err != nil {
		return nil, err
	}
	defer a.cleanup()

	if _, err := a.currentUser(ctx); err != nil {
		return nil, err
	}
	result := screen.LoadDashboard(ctx, a.client, 1)
	if result.Err != nil {
		return nil, result.Err
	}
	return &result.Data, nil
}

// Serve runs the in-memory development API server until ctx is cancelled.
// addr overrides server.addr when non-empty.
func (a *App) Serve(ctx context.Context, addr string) error {
	// The server logs to stderr; there is no TUI to protect.
	if _, err := log.Setup(a.cfg.LogLevel, ""); err != nil {
		return err
	}
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv, err := devserver.New(devserver.Config{JWTSecret: a.cfg.Server.JWTSecret})
	if err != nil {
		return err
	}
	return srv.Run(ctx, addr)
}

func (a *App) currentUser(ctx context.Context) (*api.User, error) {
	s := a.sessions.Resolve(ctx)
	if !s.IsAuthenticated || s.User == nil {
		return nil, ErrNotSignedIn
	}
	return s.User, nil
}

// initDependencies initializes all required dependencies.
func (a *App) initDependencies(logFile string) error {
	closer, err := log.Setup(a.cfg.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.logCloser = closer

	database, err := db.New(a.cfg.SessionPath)
	if err != nil {
		a.cleanup()
		return fmt.Errorf("failed to open session store: %w", err)
	}
	a.db = database

	a.client = api.NewClient(api.Options{
		BaseURL:           a.cfg.APIURL,
		Timeout:           a.cfg.RequestTimeout(),
		RequestsPerSecond: a.cfg.RequestsPerSecond,
	})
	a.sessions = session.NewProvider(a.client, a.db, a.cfg.APIURL)
	a.client.SetTokenSource(a.sessions.Token)

	return nil
}

// cleanup releases resources.
func (a *App) cleanup() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn("failed to close session store", "error", err)
		}
		a.db = nil
	}
	if a.logCloser != nil {
		log.SetOutput(os.Stderr)
		log.CloseError("log file", a.logCloser.Close())
		a.logCloser = nil
	}
}

// APIURL returns the API server this app talks to.
func (a *App) APIURL() string {
	return a.cfg.APIURL
}
