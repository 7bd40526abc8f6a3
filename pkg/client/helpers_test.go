package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrymomot/subsync/pkg/client"
	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/view"
)

type fakeGateway struct {
	mu            sync.Mutex
	subscription  func(ctx context.Context, token string) (*gateway.Subscription, error)
	checkout      func(ctx context.Context, token string) (*gateway.CheckoutSession, error)
	verify        func(ctx context.Context, token string) error
	lookups       []string
	checkouts     []string
	verifications []string
}

func (g *fakeGateway) GetSubscription(ctx context.Context, token string) (*gateway.Subscription, error) {
	g.mu.Lock()
	g.lookups = append(g.lookups, token)
	fn := g.subscription
	g.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, token)
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, token string) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	g.checkouts = append(g.checkouts, token)
	fn := g.checkout
	g.mu.Unlock()
	if fn == nil {
		return &gateway.CheckoutSession{URL: "https://pay/session/abc"}, nil
	}
	return fn(ctx, token)
}

func (g *fakeGateway) VerifyToken(ctx context.Context, token string) error {
	g.mu.Lock()
	g.verifications = append(g.verifications, token)
	fn := g.verify
	g.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, token)
}

func (g *fakeGateway) counts() (lookups, checkouts, verifications int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.lookups), len(g.checkouts), len(g.verifications)
}

// recorder is the UI handle used by the tests.
type recorder struct {
	mu          sync.Mutex
	frames      []view.Frame
	alerts      []string
	urls        []string
	navigateErr error
}

func (r *recorder) Render(_ context.Context, f view.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Alert(_ context.Context, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

func (r *recorder) Navigate(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return r.navigateErr
}

func (r *recorder) last() view.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return view.Frame{}
	}
	return r.frames[len(r.frames)-1]
}

func (r *recorder) allFrames() []view.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]view.Frame(nil), r.frames...)
}

func (r *recorder) allAlerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

func (r *recorder) allURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

var errTokenRevoked = errors.New("session revoked")

func user(id, name, token string) *identity.Identity {
	return identity.New(id, name, func(context.Context) (string, error) { return token, nil })
}

func revokedUser(id string) *identity.Identity {
	return identity.New(id, id, func(context.Context) (string, error) { return "", errTokenRevoked })
}

func newClient(t *testing.T, src identity.Source, gw client.Gateway, opts ...client.Option) (*client.Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]client.Option{
		client.WithNotifier(rec),
		client.WithNavigator(rec),
	}, opts...)
	c := client.New(src, gw, rec, opts...)
	t.Cleanup(c.Wait)
	return c, rec
}
