package subsync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/subsync/pkg/client"
	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/view"
)

// UI is the surface the client draws on. textview.Terminal and webview.Hub
// both implement it.
type UI interface {
	view.Renderer
	view.Notifier
	view.Navigator
}

// App is a wired client with the collaborators front ends need to reach.
type App struct {
	Client    *client.Client
	Identity  *identity.Hub
	Gateway   *gateway.Client
	Presenter *view.Presenter
	Registry  *prometheus.Registry

	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	identity   *identity.Identity
	registry   *prometheus.Registry
	httpClient *http.Client
	catalog    *view.Catalog
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIdentity starts the client signed in as id. It takes precedence over
// Config.IDToken.
func WithIdentity(id *identity.Identity) Option {
	return func(o *options) { o.identity = id }
}

// WithRegistry registers metrics with reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithHTTPClient sets the client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCatalog replaces the embedded label catalog.
func WithCatalog(c *view.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// New wires an App drawing on ui. Nothing runs until Start.
func New(cfg Config, ui UI, opts ...Option) (*App, error) {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	catalog := o.catalog
	if catalog == nil {
		catalog = view.DefaultCatalog()
	}
	presenter := view.NewPresenter(catalog.Labels(cfg.Locale), loc)

	gwOpts := []gateway.Option{gateway.WithLogger(o.logger)}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(o.httpClient))
	}
	gw, err := gateway.NewFromConfig(cfg.Backend, gwOpts...)
	if err != nil {
		return nil, errors.Join(ErrInitialize, err)
	}

	initial := o.identity
	if initial == nil && cfg.IDToken != "" {
		if initial, err = identity.FromIDToken(cfg.IDToken); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}
	source := identity.NewHub(initial)

	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics, err := client.NewMetrics(reg)
	if err != nil {
		return nil, errors.Join(ErrInitialize, err)
	}

	c := client.New(source, gw, ui,
		client.WithLogger(o.logger),
		client.WithNotifier(ui),
		client.WithNavigator(ui),
		client.WithPresenter(presenter),
		client.WithMetrics(metrics),
	)

	return &App{
		Client:    c,
		Identity:  source,
		Gateway:   gw,
		Presenter: presenter,
		Registry:  reg,
		logger:    o.logger,
	}, nil
}

// Start attaches the client to its identity source. The first transition
// is applied before Start returns; stop detaches it again.
func (a *App) Start(ctx context.Context) (stop func()) {
	return a.Client.Start(ctx)
}
