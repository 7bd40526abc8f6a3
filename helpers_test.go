package subsync_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subsync"
	"github.com/dmitrymomot/subsync/internal/devbackend"
	"github.com/dmitrymomot/subsync/pkg/cookie"
	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/view"
	"github.com/dmitrymomot/subsync/pkg/view/webview"
)

const cookieSecret = "0123456789abcdef0123456789abcdef"

// browser records what the client asked the page to do while still
// forwarding it to the hub.
type browser struct {
	*webview.Hub

	mu     sync.Mutex
	alerts []string
	urls   []string
}

func (b *browser) Alert(ctx context.Context, msg string) {
	b.mu.Lock()
	b.alerts = append(b.alerts, msg)
	b.mu.Unlock()
	b.Hub.Alert(ctx, msg)
}

func (b *browser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	b.urls = append(b.urls, url)
	b.mu.Unlock()
	return b.Hub.Navigate(ctx, url)
}

func (b *browser) Alerts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.alerts...)
}

func (b *browser) URLs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.urls...)
}

type env struct {
	issuer  *identity.DevIssuer
	backend *httptest.Server
	store   *devbackend.Backend
	ui      *browser
	app     *subsync.App
	web     *httptest.Server
}

func newEnv(t *testing.T, opts ...subsync.WebOption) *env {
	t.Helper()

	issuer := identity.NewDevIssuer([]byte("test-secret"), time.Hour)
	store := devbackend.New(issuer, devbackend.Config{Plan: "Pro", PublicURL: "http://pay.test"})
	backend := httptest.NewServer(store.Router())
	t.Cleanup(backend.Close)

	ui := &browser{Hub: webview.NewHub(view.DefaultPresenter().Present(view.State{}))}
	app, err := subsync.New(subsync.Config{
		Backend: gateway.Config{BaseURL: backend.URL, Timeout: 5 * time.Second},
	}, ui)
	require.NoError(t, err)

	stop := app.Start(context.Background())
	t.Cleanup(func() {
		stop()
		app.Client.Wait()
	})

	e := &env{issuer: issuer, backend: backend, store: store, ui: ui, app: app}

	cookies, err := cookie.New([]string{cookieSecret})
	require.NoError(t, err)

	web := httptest.NewUnstartedServer(nil)
	auth := subsync.DevAuthenticator{
		Issuer:   issuer,
		Callback: "http://" + web.Listener.Addr().String() + subsync.CallbackPath,
		Subject:  "ada",
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
	}
	web.Config.Handler = app.Handler(ui.Hub, append([]subsync.WebOption{subsync.WithAuthenticator(auth, cookies)}, opts...)...)
	web.Start()
	t.Cleanup(web.Close)
	e.web = web

	return e
}
