// Package app provides the application context and dependency management
// for the bibmerge CLI. It centralizes configuration, logging and the
// bibmerge client, and hands them to commands through the
// application.Application interface.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/bibmerge"
	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/logging"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the bibmerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Default client (lazy-initialized, singleton)
	mu     sync.RWMutex
	client bibmerge.Client
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from files and the
// environment, which can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured report format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Bibmerge returns a client built from the configuration. Without opts
// the same instance is returned on every call; with opts a new client is
// created with opts applied after the configured defaults.
func (a *App) Bibmerge(opts ...bibmerge.Option) (bibmerge.Client, error) {
	if len(opts) > 0 {
		bm, err := bibmerge.New(append(a.clientOptions(), opts...)...)
		if err != nil {
			return nil, err
		}
		return bm, nil
	}

	a.mu.RLock()
	if a.client != nil {
		bm := a.client
		a.mu.RUnlock()
		return bm, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	bm, err := bibmerge.New(a.clientOptions()...)
	if err != nil {
		return nil, err
	}
	a.client = bm
	return bm, nil
}

// Shutdown flushes anything the application still holds. The CLI keeps
// no background work, so it only reports a cancelled context.
func (a *App) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapIO("shutdown", "", err)
	}
	logging.FromContext(logging.WithLogger(ctx, a.logger)).Debug().Msg("Shutdown complete")
	return nil
}

// clientOptions converts the configuration into client options.
func (a *App) clientOptions() []bibmerge.Option {
	opts := []bibmerge.Option{
		bibmerge.WithDirection(a.config.Direction),
		bibmerge.WithUnion(a.config.Union),
		bibmerge.WithKeepKey(a.config.KeepKey),
		bibmerge.WithStrict(a.config.Strict),
	}
	if len(a.config.Selectors) > 0 {
		opts = append(opts, bibmerge.WithSelectors(a.config.Selectors...))
	}
	if a.config.Workers > 0 {
		opts = append(opts, bibmerge.WithWorkers(a.config.Workers))
	}
	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom default client (useful for testing).
func WithClient(bm bibmerge.Client) Option {
	return func(a *App) error {
		a.client = bm
		return nil
	}
}
