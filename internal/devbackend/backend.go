package devbackend

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/dmitrymomot/subsync/pkg/httpserver"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/requestid"
)

// Config is loaded from the environment.
type Config struct {
	Secret    string        `env:"DEV_TOKEN_SECRET" envDefault:"subsync-dev-secret"`
	Plan      string        `env:"DEV_PLAN" envDefault:"Pro"`
	Period    time.Duration `env:"DEV_PERIOD" envDefault:"720h"`
	PublicURL string        `env:"DEV_PUBLIC_URL" envDefault:"http://localhost:8000"`
	// SessionTTL bounds how long a checkout session can be completed.
	SessionTTL time.Duration `env:"DEV_SESSION_TTL" envDefault:"30m"`
}

// Subscription is the record stored per user.
type Subscription struct {
	ID               string `json:"id"`
	Plan             string `json:"plan"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// Backend serves the subscription endpoints from a Store.
type Backend struct {
	verifier   Verifier
	store      Store
	plan       string
	period     time.Duration
	sessionTTL time.Duration
	publicURL  string
	now        func() time.Time
	checks     []httpserver.Check
	logger     *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithStore replaces the in-memory store.
func WithStore(s Store) Option {
	return func(b *Backend) {
		if s != nil {
			b.store = s
		}
	}
}

// WithHealthChecks adds readiness checks to /healthz.
func WithHealthChecks(checks ...httpserver.Check) Option {
	return func(b *Backend) { b.checks = append(b.checks, checks...) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// New returns a backend verifying tokens with v.
func New(v Verifier, cfg Config, opts ...Option) *Backend {
	b := &Backend{
		verifier:   v,
		plan:       cfg.Plan,
		period:     cfg.Period,
		sessionTTL: cfg.SessionTTL,
		publicURL:  cfg.PublicURL,
		now:        time.Now,
		logger:     logger.Discard(),
	}
	if b.plan == "" {
		b.plan = "Pro"
	}
	if b.period <= 0 {
		b.period = 30 * 24 * time.Hour
	}
	if b.sessionTTL <= 0 {
		b.sessionTTL = 30 * time.Minute
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.store == nil {
		b.store = NewMemoryStore()
	}
	b.logger = b.logger.With(logger.Component("devbackend"))
	return b
}

// Activate stores an active subscription for uid.
func (b *Backend) Activate(ctx context.Context, uid string) (Subscription, error) {
	sub := Subscription{
		ID:               "sub_" + uuid.NewString(),
		Plan:             b.plan,
		Status:           "active",
		CurrentPeriodEnd: b.now().Add(b.period).Unix(),
	}
	if err := b.store.SaveSubscription(ctx, uid, sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// Subscription returns the record for uid.
func (b *Backend) Subscription(ctx context.Context, uid string) (Subscription, bool, error) {
	return b.store.Subscription(ctx, uid)
}

// Router returns the HTTP routes.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(b.logger, b.checks...))
	r.Post("/verify-token/", b.verifyToken)
	r.Post("/create-checkout-session", b.createCheckoutSession)
	r.Get("/success", b.success)
	r.Get("/cancel", b.cancel)
	r.With(RequireBearer(b.verifier)).Get("/me/subscription", b.getSubscription)
	return r
}

type idTokenBody struct {
	IDToken string `json:"id_token"`
}

func readToken(w http.ResponseWriter, r *http.Request) string {
	var body idTokenBody
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, 1<<16), &body); err != nil {
		return ""
	}
	return body.IDToken
}

func (b *Backend) verifyToken(w http.ResponseWriter, r *http.Request) {
	token := readToken(w, r)
	if token == "" {
		writeJSON(w, r, http.StatusBadRequest, detail("Missing ID token"))
		return
	}
	claims, err := b.verifier.Verify(token)
	if err != nil {
		b.logger.InfoContext(r.Context(), "token rejected", logger.Error(err))
		writeJSON(w, r, http.StatusUnauthorized, detail("Invalid token"))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"uid":   claims.Subject,
		"name":  claims.Name,
		"email": claims.Email,
	})
}

func (b *Backend) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	token := readToken(w, r)
	claims, err := b.verifier.Verify(token)
	if token == "" || err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "Something went wrong"})
		return
	}

	id := "cs_" + uuid.NewString()
	if err := b.store.SaveSession(r.Context(), id, claims.Subject, b.sessionTTL); err != nil {
		b.internalError(w, r, err)
		return
	}

	b.logger.InfoContext(r.Context(), "checkout session created", logger.IdentityID(claims.Subject))
	writeJSON(w, r, http.StatusOK, map[string]string{
		"url": b.publicURL + "/success?session_id=" + url.QueryEscape(id),
	})
}

func (b *Backend) success(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeHTML(w, r, http.StatusBadRequest, "<h1>Missing session ID!</h1>")
		return
	}

	uid, ok, err := b.store.TakeSession(r.Context(), id)
	if err != nil {
		b.internalError(w, r, err)
		return
	}
	if !ok {
		writeHTML(w, r, http.StatusNotFound, "<h1>Unknown checkout session</h1>")
		return
	}

	sub, err := b.Activate(r.Context(), uid)
	if err != nil {
		b.internalError(w, r, err)
		return
	}
	b.logger.InfoContext(r.Context(), "subscription activated", logger.IdentityID(uid), slog.String("plan", sub.Plan))
	writeHTML(w, r, http.StatusOK, `<h1>Subscription active</h1><p><a href="/">Back</a></p>`)
}

func (b *Backend) cancel(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusOK, `<h1>Checkout cancelled</h1><p><a href="/">Back</a></p>`)
}

func (b *Backend) getSubscription(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	sub, ok, err := b.Subscription(r.Context(), claims.Subject)
	if err != nil {
		b.internalError(w, r, err)
		return
	}
	if !ok {
		// Unknown users have no document; the contract returns an empty list.
		writeJSON(w, r, http.StatusOK, map[string]any{"subscription": []any{}})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"subscription": sub})
}

func (b *Backend) internalError(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.ErrorContext(r.Context(), "store failed", logger.Error(err))
	writeJSON(w, r, http.StatusInternalServerError, detail("Internal server error"))
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeHTML(w http.ResponseWriter, r *http.Request, status int, body string) {
	render.Status(r, status)
	render.HTML(w, r, body)
}
