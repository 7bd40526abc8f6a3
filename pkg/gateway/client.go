package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/requestid"
)

const (
	pathSubscription = "/me/subscription"
	pathCheckout     = "/create-checkout-session"
	pathVerifyToken  = "/verify-token/"

	maxBodySize = 1 << 20
)

// Config holds backend connection settings.
type Config struct {
	BaseURL string        `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// Client talks to the subscription backend.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base: u,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a client from Config. The configured timeout applies
// unless WithHTTPClient overrides the HTTP client.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Timeout > 0 {
		opts = append([]Option{WithHTTPClient(&http.Client{Timeout: cfg.Timeout})}, opts...)
	}
	return New(cfg.BaseURL, opts...)
}

// GetSubscription returns the active subscription for the token's identity,
// or nil when the backend reports none.
func (c *Client) GetSubscription(ctx context.Context, token string) (*Subscription, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	status, body, err := c.do(ctx, http.MethodGet, pathSubscription, token, nil)
	if err != nil {
		return nil, err
	}
	if !success(status) {
		return nil, &StatusError{Code: status, Body: string(body)}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		return nil, errors.Join(ErrMalformedBody, err)
	}

	raw := bytes.TrimSpace(envelope["subscription"])
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")), bytes.Equal(compact(raw), []byte("[]")):
		// Unknown users come back as an empty list.
		return nil, nil
	case raw[0] != '{':
		return nil, fmt.Errorf("%w: subscription is not an object", ErrMalformedBody)
	}

	var sub Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, errors.Join(ErrMalformedBody, err)
	}
	return &sub, nil
}

// CreateCheckoutSession asks the backend for a hosted checkout URL. When the
// backend answers without one, the returned *CheckoutError holds its raw body.
func (c *Client) CreateCheckoutSession(ctx context.Context, token string) (*CheckoutSession, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	status, body, err := c.do(ctx, http.MethodPost, pathCheckout, "", idTokenRequest{IDToken: token})
	if err != nil {
		return nil, err
	}

	var session CheckoutSession
	if jerr := json.Unmarshal(body, &session); jerr != nil {
		return nil, &CheckoutError{Status: status, Body: string(body), Err: errors.Join(ErrMalformedBody, jerr)}
	}
	if !success(status) {
		return nil, &CheckoutError{Status: status, Body: string(compact(body)), Err: ErrUnexpectedStatus}
	}
	if session.URL == "" {
		return nil, &CheckoutError{Status: status, Body: string(compact(body)), Err: ErrNoCheckoutURL}
	}
	if u, err := url.Parse(session.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &CheckoutError{Status: status, Body: string(compact(body)), Err: ErrInvalidCheckoutURL}
	}
	return &session, nil
}

// VerifyToken notifies the backend of a fresh sign-in so it can establish its
// own session. The response body is not consulted.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	status, body, err := c.do(ctx, http.MethodPost, pathVerifyToken, "", idTokenRequest{IDToken: token})
	if err != nil {
		return err
	}
	if !success(status) {
		return &StatusError{Code: status, Body: string(body)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, payload any) (int, []byte, error) {
	ctx, reqID := requestid.Ensure(ctx)

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, errors.Join(ErrRequestFailed, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return 0, nil, errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.Header, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "backend request failed",
			logger.Endpoint(method, path),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		return 0, nil, errors.Join(ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, errors.Join(ErrRequestFailed, err)
	}

	c.log.DebugContext(ctx, "backend request",
		logger.Endpoint(method, path),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func compact(body []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return bytes.TrimSpace(body)
	}
	return buf.Bytes()
}
