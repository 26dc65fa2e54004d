package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pantryhub/pantry/internal/api"
	"github.com/pantryhub/pantry/internal/auth"
	"github.com/pantryhub/pantry/internal/cli/ui"
	"github.com/pantryhub/pantry/internal/config"
	"github.com/pantryhub/pantry/internal/logger"
	"github.com/pantryhub/pantry/internal/router"
	"github.com/pantryhub/pantry/internal/session"
)

// App holds everything a command needs, built once per invocation
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	UI        *ui.UI
	Session   *session.Session
	Client    *api.Client
	Auth      *auth.Service
	Routes    *router.Table
	Navigator *router.Navigator
}

// Options lets callers replace pieces of the default wiring
type Options struct {
	Version string
	UI      *ui.UI
	// Storage overrides the token store selected by configuration
	Storage    session.Storage
	HTTPClient *http.Client
}

// New wires the session, API client, auth service and navigator from cfg.
func New(cfg *config.Config, opts Options) (*App, error) {
	u := opts.UI
	if u == nil {
		u = ui.Std()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	log := logger.New(u.Err, cfg.Logging.Level, cfg.Logging.Format)

	storage := opts.Storage
	if storage == nil {
		var err error
		storage, err = NewStorage(cfg)
		if err != nil {
			return nil, err
		}
	}

	sess, err := session.New(storage)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	enc, err := api.ParseLoginEncoding(cfg.API.LoginEncoding)
	if err != nil {
		return nil, err
	}

	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
		api.WithRequestDecorators(
			api.UserAgent("pantry-cli/"+version),
			api.RequestID(),
			api.BearerToken(sess),
		),
		api.WithResponseHandlers(api.SessionExpiry(func() {
			if err := sess.Expire(); err != nil {
				log.Warn().Err(err).Msg("Failed to clear persisted token")
			}
		})),
	}
	if opts.HTTPClient != nil {
		// Copy so the timeout option doesn't touch the caller's client
		hc := *opts.HTTPClient
		clientOpts = append([]api.Option{api.WithHTTPClient(&hc)}, clientOpts...)
	}

	client, err := api.New(cfg.API.BaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	routes := router.DefaultTable()
	nav := router.NewNavigator(routes, sess, u, log)

	sess.OnExpired(func() { u.Alert(auth.MsgSessionExpired) })
	sess.OnExpired(nav.SessionExpired)

	return &App{
		Config:  cfg,
		Log:     log,
		UI:      u,
		Session: sess,
		Client:  client,
		Auth: auth.NewService(sess, client, auth.Options{
			Encoding:      enc,
			StrictProfile: cfg.Session.StrictProfile,
			Logger:        log,
			Notifier:      u,
		}),
		Routes:    routes,
		Navigator: nav,
	}, nil
}

// NewStorage returns the token store named by the configuration
func NewStorage(cfg *config.Config) (session.Storage, error) {
	switch cfg.Session.TokenStore {
	case config.TokenStoreMemory:
		return session.NewMemoryStorage(), nil
	case config.TokenStoreKeyring:
		// One keychain entry per backend
		u, err := url.Parse(cfg.API.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL: %w", err)
		}
		return session.NewKeyringStorage(u.Host), nil
	case config.TokenStoreFile, "":
		path, err := cfg.StatePath()
		if err != nil {
			return nil, err
		}
		return session.NewFileStorage(path), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Session.TokenStore)
	}
}

// PrepareRoute fetches the profile ahead of an admin route when only the token
// was restored. The profile lives in memory only. A failed fetch is logged
// and left for the guard to act on.
func (a *App) PrepareRoute(ctx context.Context, route router.Route) {
	if !route.Meta.RequiresAdmin || !a.Session.IsAuthenticated() || a.Session.User() != nil {
		return
	}
	if err := a.Auth.FetchCurrentUser(ctx); err != nil {
		a.Log.Debug().Err(err).Str("route", route.Path).Msg("Profile unavailable before admin view")
	}
}

// Enter runs the route guard for the view at path. The view may run only if
// navigation ends at the requested route.
func (a *App) Enter(ctx context.Context, path string) error {
	route, err := a.Routes.Lookup(path)
	if err != nil {
		return err
	}

	a.PrepareRoute(ctx, route)

	res, err := a.Navigator.Navigate(path)
	if err != nil {
		return err
	}
	if !res.Redirected() {
		return nil
	}

	switch res.Route.Path {
	case router.PathLogin:
		return ErrLoginRequired
	case router.PathHome:
		if res.Decisions[0].Outcome == router.Block {
			return ErrAccessDenied
		}
		return ErrAlreadyLoggedIn
	default:
		return fmt.Errorf("redirected to %s", res.Route.Path)
	}
}
