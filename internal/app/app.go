// Package app provides the application context for forage-ns.
// It allows dependency injection for testing.
package app

import (
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/registry"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

// App holds the application dependencies
type App struct {
	// Paths holds the configured paths
	Paths *config.Paths

	// Settings is the loaded config.toml
	Settings *config.Settings

	// Runtime spawns and enters sandbox processes
	Runtime runtime.Runtime

	// Manager runs the sandbox operations
	Manager *sandbox.Manager
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithSettings sets custom settings
func WithSettings(s *config.Settings) Option {
	return func(a *App) {
		a.Settings = s
	}
}

// WithRuntime sets a custom runtime
func WithRuntime(r runtime.Runtime) Option {
	return func(a *App) {
		a.Runtime = r
	}
}

// New creates a new App with the given options.
// Settings are read from the config dir when not provided, and the
// namespace runtime is used unless WithRuntime is given.
func New(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}

	if app.Settings == nil {
		configDir := config.DefaultConfigDir
		if app.Paths != nil {
			configDir = app.Paths.ConfigDir
		}
		settings, err := config.LoadSettings(configDir)
		if err != nil {
			return nil, errors.ConfigError("failed to load settings", err)
		}
		app.Settings = settings
	}
	if app.Paths == nil {
		app.Paths = config.NewPaths(config.DefaultConfigDir, app.Settings.StateDir)
	}

	if app.Runtime == nil {
		rs := app.Settings.Runtime
		app.Runtime = runtime.NewNamespaceRuntime(rs.Binary, rs.Nsenter, rs.DefaultCommand)
	}

	mgr, err := NewManager(app.Paths, app.Settings, app.Runtime)
	if err != nil {
		return nil, err
	}
	app.Manager = mgr

	logging.Debug("application initialized",
		"stateDir", app.Paths.StateDir,
		"runtime", app.Runtime.Name(),
		"pool", app.Settings.Pool.Prefix)
	return app, nil
}

// Load builds an App from the settings in configDir. A non-empty stateDir
// overrides the configured one.
func Load(configDir, stateDir string, opts ...Option) (*App, error) {
	settings, err := config.LoadSettings(configDir)
	if err != nil {
		return nil, errors.ConfigError("failed to load settings", err)
	}
	if stateDir != "" {
		settings.StateDir = stateDir
		if err := settings.Validate(); err != nil {
			return nil, errors.ConfigError("invalid state dir", err)
		}
	}

	base := []Option{
		WithSettings(settings),
		WithPaths(config.NewPaths(configDir, settings.StateDir)),
	}
	return New(append(base, opts...)...)
}

// NewManager builds a sandbox manager from settings.
func NewManager(paths *config.Paths, settings *config.Settings, rt runtime.Runtime) (*sandbox.Manager, error) {
	pool, err := network.ParsePool(settings.Pool.Prefix, settings.Pool.MaxBlocks)
	if err != nil {
		return nil, errors.ConfigError("invalid pool settings", err)
	}
	timeout, err := settings.ExecTimeout()
	if err != nil {
		return nil, errors.ConfigError("invalid runtime.exec_timeout", err)
	}
	policy := registry.PreferAvailability
	if settings.Registry.Strict {
		policy = registry.Strict
	}

	return sandbox.NewManager(sandbox.Config{
		Paths:        paths,
		Pool:         pool,
		Runtime:      rt,
		LoadPolicy:   policy,
		ExecTimeout:  timeout,
		ShellCommand: settings.Runtime.DefaultCommand,
	})
}

// Default is the application instance used by the CLI. It is built on
// first use unless a test installs one with SetDefault.
var Default *App

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault clears the default application instance
func ResetDefault() {
	Default = nil
}
