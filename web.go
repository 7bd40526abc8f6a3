package subsync

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/subsync/pkg/cookie"
	"github.com/dmitrymomot/subsync/pkg/httpserver"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/requestid"
	"github.com/dmitrymomot/subsync/pkg/view"
	"github.com/dmitrymomot/subsync/pkg/view/webview"
)

const (
	// CallbackPath receives the provider's redirect after consent.
	CallbackPath = "/auth/callback"

	stateCookie   = "subsync_oauth_state"
	stateMaxAge   = 600
	sessionCookie = "subsync_session"
)

// Authenticator runs a redirect based sign-in.
type Authenticator interface {
	AuthURL(state string) string
	SignIn(ctx context.Context, code string) (*identity.Identity, error)
}

var _ Authenticator = (*identity.GoogleProvider)(nil)

// DevAuthenticator signs every browser in as one development user without
// leaving the app. Tokens come from Issuer, so the dev backend accepts them.
type DevAuthenticator struct {
	Issuer   *identity.DevIssuer
	Callback string
	Subject  string
	Name     string
	Email    string
}

func (d DevAuthenticator) AuthURL(state string) string {
	q := url.Values{"state": {state}, "code": {d.Subject}}
	return d.Callback + "?" + q.Encode()
}

func (d DevAuthenticator) SignIn(_ context.Context, code string) (*identity.Identity, error) {
	if code == "" || code != d.Subject {
		return nil, identity.ErrInvalidCode
	}
	return d.Issuer.Identity(d.Subject, d.Name, d.Email), nil
}

// WebOption configures Handler.
type WebOption func(*web)

// WithAuthenticator enables the sign-in routes. The OAuth state travels in
// a cookie signed by cookies.
func WithAuthenticator(a Authenticator, cookies *cookie.Manager) WebOption {
	return func(w *web) {
		w.auth = a
		w.cookies = cookies
	}
}

// WithHealthChecks adds readiness checks to /healthz.
func WithHealthChecks(checks ...httpserver.Check) WebOption {
	return func(w *web) { w.checks = append(w.checks, checks...) }
}

type web struct {
	app     *App
	hub     *webview.Hub
	auth    Authenticator
	cookies *cookie.Manager
	checks  []httpserver.Check
	logger  *slog.Logger

	// session is the value of the cookie handed to the browser that signed
	// in last. Empty until a browser signs in.
	mu      sync.Mutex
	session string
}

// Handler returns the browser front end: the page, its event stream, the
// actions it posts, sign-in, metrics and health. The App must have been
// created with hub as its UI.
//
// Once a browser has signed in through /auth/callback, the page, the stream
// and the actions belong to that browser. Others get a static signed-out
// page and 403 on the stream and actions until they sign in themselves.
func (a *App) Handler(hub *webview.Hub, opts ...WebOption) http.Handler {
	w := &web{
		app:    a,
		hub:    hub,
		logger: a.logger.With(logger.Component("web")),
	}
	for _, opt := range opts {
		opt(w)
	}

	routes := webview.DefaultRoutes

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", w.index)
	r.Group(func(r chi.Router) {
		r.Use(w.ownerOnly)
		r.Get(routes.Stream, hub.Stream)
		r.Post(routes.Subscribe, w.subscribe)
		r.Post(routes.SignOut, w.signOut)
	})
	r.Get(routes.SignIn, w.login)
	r.Get(CallbackPath, w.callback)

	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", httpserver.HealthHandler(w.logger, w.checks...))

	return r
}

// index is a page load: the client re-reads the current identity and its
// subscription, then the page is served with the resulting frame.
func (w *web) index(rw http.ResponseWriter, r *http.Request) {
	if !w.owner(r) {
		w.guestPage(rw, r)
		return
	}
	if _, err := w.app.Client.Reload(r.Context()).AwaitContext(r.Context()); err != nil {
		w.logger.DebugContext(r.Context(), "page served before reload finished", logger.Error(err))
	}
	w.hub.Page(rw, r)
}

func (w *web) guestPage(rw http.ResponseWriter, r *http.Request) {
	routes := webview.DefaultRoutes
	routes.Stream = ""
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webview.Page(w.app.Presenter.Present(view.State{}), routes).Render(r.Context(), rw); err != nil {
		w.logger.ErrorContext(r.Context(), "render guest page", logger.Error(err))
	}
}

// owner reports whether r comes from the browser that signed in last, or
// whether no browser has signed in yet.
func (w *web) owner(r *http.Request) bool {
	w.mu.Lock()
	session := w.session
	w.mu.Unlock()
	if session == "" {
		return true
	}
	got, err := w.cookies.GetSigned(r, sessionCookie)
	return err == nil && subtle.ConstantTimeCompare([]byte(got), []byte(session)) == 1
}

func (w *web) ownerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !w.owner(r) {
			http.Error(rw, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(rw, r)
	})
}

// startSession hands the page to the browser behind rw. Streams opened by
// anyone else are ended before the new identity is rendered.
func (w *web) startSession(rw http.ResponseWriter) {
	session := uuid.NewString()
	w.mu.Lock()
	w.session = session
	w.mu.Unlock()
	w.cookies.SetSigned(rw, sessionCookie, session)
	w.hub.Disconnect()
}

func (w *web) endSession(rw http.ResponseWriter) {
	w.mu.Lock()
	w.session = ""
	w.mu.Unlock()
	if w.cookies != nil {
		w.cookies.Delete(rw, sessionCookie)
	}
}

func (w *web) subscribe(rw http.ResponseWriter, r *http.Request) {
	if err := w.app.Client.Purchase(r.Context()); err != nil {
		w.logger.DebugContext(r.Context(), "purchase not started", logger.Error(err))
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (w *web) signOut(rw http.ResponseWriter, r *http.Request) {
	if err := w.app.Client.SignOut(r.Context()); err != nil {
		w.logger.ErrorContext(r.Context(), "sign out", logger.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.endSession(rw)
	rw.WriteHeader(http.StatusNoContent)
}

func (w *web) login(rw http.ResponseWriter, r *http.Request) {
	if w.auth == nil {
		http.Error(rw, "sign-in is not configured", http.StatusNotFound)
		return
	}
	state := uuid.NewString()
	w.cookies.SetSigned(rw, stateCookie, state, cookie.WithMaxAge(stateMaxAge))
	http.Redirect(rw, r, w.auth.AuthURL(state), http.StatusFound)
}

// callback finishes the sign-in and sends the browser back to the page.
// Failures reach the user as an alert on that page.
func (w *web) callback(rw http.ResponseWriter, r *http.Request) {
	if w.auth == nil {
		http.Error(rw, "sign-in is not configured", http.StatusNotFound)
		return
	}

	_ = w.app.Client.SignIn(r.Context(), func(ctx context.Context) (*identity.Identity, error) {
		code, err := w.authorize(rw, r)
		if err != nil {
			return nil, err
		}
		id, err := w.auth.SignIn(ctx, code)
		if err != nil {
			return nil, err
		}
		w.startSession(rw)
		w.app.Identity.SignIn(id)
		return id, nil
	})

	http.Redirect(rw, r, "/", http.StatusSeeOther)
}

// authorize checks the state round trip and returns the authorization code.
func (w *web) authorize(rw http.ResponseWriter, r *http.Request) (string, error) {
	q := r.URL.Query()

	expected, err := w.cookies.Pop(rw, r, stateCookie)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(q.Get("state"))) != 1 {
		return "", ErrInvalidState
	}
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("%w: %s", ErrProvider, e)
	}

	code := q.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}
