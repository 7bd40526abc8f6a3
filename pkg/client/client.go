package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/statemachine"
	"github.com/dmitrymomot/subsync/pkg/view"
)

// Gateway is the part of the backend the client talks to.
// *gateway.Client implements it.
type Gateway interface {
	GetSubscription(ctx context.Context, token string) (*gateway.Subscription, error)
	CreateCheckoutSession(ctx context.Context, token string) (*gateway.CheckoutSession, error)
	VerifyToken(ctx context.Context, token string) error
}

var _ Gateway = (*gateway.Client)(nil)

// Client orchestrates identity transitions, subscription lookups and the
// purchase flow against one UI handle.
type Client struct {
	source    identity.Source
	gateway   Gateway
	renderer  view.Renderer
	notifier  view.Notifier
	navigator view.Navigator
	presenter *view.Presenter
	metrics   *Metrics
	logger    *slog.Logger

	mu         sync.Mutex
	state      view.State
	current    *identity.Identity
	generation uint64

	purchase *statemachine.Machine[purchaseState, purchaseEvent]
	inflight sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Lookup failures are logged here and nowhere
// else.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNotifier sets where blocking messages go.
func WithNotifier(n view.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator sets how the checkout handoff leaves the page.
func WithNavigator(n view.Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithPresenter sets labels and date formatting.
func WithPresenter(p *view.Presenter) Option {
	return func(c *Client) {
		if p != nil {
			c.presenter = p
		}
	}
}

// WithMetrics enables counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a client. Nothing happens until Start.
func New(source identity.Source, gw Gateway, renderer view.Renderer, opts ...Option) *Client {
	c := &Client{
		source:    source,
		gateway:   gw,
		renderer:  renderer,
		notifier:  view.Nop{},
		navigator: view.Nop{},
		presenter: view.DefaultPresenter(),
		logger:    logger.Discard(),
		purchase:  newPurchaseGuard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = view.Nop{}
	}
	c.logger = c.logger.With(logger.Component("client"))
	return c
}

// State returns a copy of the current UI model.
func (c *Client) State() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Subscription != nil {
		sub := *s.Subscription
		s.Subscription = &sub
	}
	return s
}

// Frame returns the frame for the current state.
func (c *Client) Frame() view.Frame {
	return c.presenter.Present(c.State())
}

// Wait blocks until every background lookup started so far has finished.
func (c *Client) Wait() {
	c.inflight.Wait()
}

// mutate applies fn to the state and renders the result. It is the only
// writer of c.state.
func (c *Client) mutate(ctx context.Context, fn func(*view.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	c.renderLocked(ctx)
}

// mutateIf is mutate for background work: it does nothing when gen is no
// longer the current generation.
func (c *Client) mutateIf(ctx context.Context, gen uint64, fn func(*view.State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	fn(&c.state)
	c.renderLocked(ctx)
	return true
}

func (c *Client) renderLocked(ctx context.Context) {
	if err := c.renderer.Render(ctx, c.presenter.Present(c.state)); err != nil {
		c.logger.WarnContext(ctx, "render failed", logger.Error(err))
	}
}

func (c *Client) alert(ctx context.Context, msg string) {
	c.notifier.Alert(ctx, msg)
}

func (c *Client) labels() view.Labels {
	return c.presenter.Labels()
}

// message joins a label and a detail the way the UI shows them.
func message(label, detail string) string {
	detail = strings.ReplaceAll(strings.TrimSpace(detail), "\n", ": ")
	if label == "" {
		return detail
	}
	return label + " " + detail
}
