package commands

import (
	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/auth"
	"github.com/seedline-dev/seedline/internal/config"
	"github.com/seedline-dev/seedline/internal/session"
)

// App wires the session store, API client and refresher a command
// needs. Commands build it on first use so flag parsing and help never
// touch the keyring.
type App struct {
	cfg       *config.Config
	store     *session.Store
	client    *api.Client
	refresher *auth.Refresher
}

// AppOption overrides part of the wiring. Tests inject an in-memory
// store and a client pointed at a mock server.
type AppOption func(*App)

// WithConfig replaces the loaded configuration
func WithConfig(cfg *config.Config) AppOption {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithStore replaces the session store
func WithStore(store *session.Store) AppOption {
	return func(a *App) {
		a.store = store
	}
}

// WithClient replaces the API client
func WithClient(client *api.Client) AppOption {
	return func(a *App) {
		a.client = client
	}
}

func newApp(opts ...AppOption) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.store == nil {
		app.store = session.NewStore(session.NewKeyringStorage())
	}
	if err := app.store.Initialize(); err != nil {
		return nil, err
	}

	if app.client == nil {
		app.client = api.New(app.cfg.API.BaseURL, app.store, api.WithTimeout(app.cfg.API.Timeout))
	}

	app.refresher = auth.NewRefresher(app.store, app.client)
	app.client.SetRefresher(app.refresher)

	return app, nil
}
