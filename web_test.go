package subsync_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subsync"
	"github.com/dmitrymomot/subsync/pkg/view"
)

func do(t *testing.T, hc *http.Client, method, target string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	resp, err := hc.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHandler_BrowserFlow(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{Jar: jar}

	// The anonymous page offers sign-in.
	resp, body := do(t, hc, http.MethodGet, e.web.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<section id="logged-out">`)
	assert.Contains(t, body, `<section id="logged-in" hidden>`)

	// Login redirects through the callback back to the page.
	resp, body = do(t, hc, http.MethodGet, e.web.URL+"/auth/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, body, `<main id="app">`)

	e.app.Client.Wait()
	state := e.app.Client.State()
	assert.True(t, state.SignedIn)
	assert.Equal(t, "Ada Lovelace", state.DisplayName)
	assert.Nil(t, state.Subscription)
	assert.False(t, state.SigningIn)
	assert.Empty(t, e.ui.Alerts())

	// Buying hands the browser over to checkout.
	resp, _ = do(t, hc, http.MethodPost, e.web.URL+"/actions/subscribe")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	urls := e.ui.URLs()
	require.Len(t, urls, 1)
	checkout, err := url.Parse(urls[0])
	require.NoError(t, err)
	assert.Equal(t, "pay.test", checkout.Host)
	assert.True(t, e.app.Client.Purchasing())

	// A second click during the handoff does not start another checkout.
	resp, _ = do(t, hc, http.MethodPost, e.web.URL+"/actions/subscribe")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, e.ui.URLs(), 1)

	resp, _ = do(t, http.DefaultClient, http.MethodGet, e.backend.URL+"/success?"+checkout.RawQuery)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Coming back to the page shows the new subscription.
	resp, _ = do(t, hc, http.MethodGet, e.web.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	e.app.Client.Wait()

	state = e.app.Client.State()
	require.NotNil(t, state.Subscription)
	assert.Equal(t, "Pro", state.Subscription.Plan)
	assert.Equal(t, "active", state.Subscription.Status)
	assert.False(t, state.Processing)
	assert.False(t, e.app.Client.Purchasing())

	frame := e.app.Client.Frame()
	assert.True(t, frame.Layout.Visible(view.RegionSubscription))
	assert.False(t, frame.Layout.Enabled(view.RegionSubscribeButton))

	resp, body = do(t, hc, http.MethodGet, e.web.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h3>Pro</h3>")
	assert.NotContains(t, body, `id="subscription-loading">`)

	// A subscribed user cannot start another checkout.
	resp, _ = do(t, hc, http.MethodPost, e.web.URL+"/actions/subscribe")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, e.ui.URLs(), 1)

	// Another browser sees neither the user nor the actions.
	resp, body = do(t, http.DefaultClient, http.MethodGet, e.web.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Ada Lovelace")
	assert.NotContains(t, body, "<h3>Pro</h3>")
	assert.NotContains(t, body, "data-init")
	for _, target := range []string{"/actions/subscribe", "/actions/signout"} {
		resp, _ = do(t, http.DefaultClient, http.MethodPost, e.web.URL+target)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, target)
	}
	resp, _ = do(t, http.DefaultClient, http.MethodGet, e.web.URL+"/stream")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.True(t, e.app.Client.State().SignedIn)
	assert.Len(t, e.ui.URLs(), 1)

	// Sign-out returns to the anonymous shell.
	resp, _ = do(t, hc, http.MethodPost, e.web.URL+"/actions/signout")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	state = e.app.Client.State()
	assert.False(t, state.SignedIn)
	assert.Nil(t, state.Subscription)

	resp, _ = do(t, http.DefaultClient, http.MethodPost, e.web.URL+"/actions/subscribe")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "nobody owns the page after sign-out")
}

func TestHandler_PurchaseSignedOut(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	resp, _ := do(t, http.DefaultClient, http.MethodPost, e.web.URL+"/actions/subscribe")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"Please log in first."}, e.ui.Alerts())
	assert.Empty(t, e.ui.URLs())
}

func TestHandler_Callback(t *testing.T) {
	t.Parallel()

	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	tests := []struct {
		name  string
		query string
		err   error
	}{
		{name: "no state cookie", query: "state=abc&code=ada", err: subsync.ErrInvalidState},
		{name: "no state cookie with provider error", query: "error=access_denied", err: subsync.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			resp, _ := do(t, noRedirect, http.MethodGet, e.web.URL+subsync.CallbackPath+"?"+tt.query)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/", resp.Header.Get("Location"))

			alerts := e.ui.Alerts()
			require.Len(t, alerts, 1)
			assert.True(t, strings.HasPrefix(alerts[0], "Login failed: "), alerts[0])
			assert.Contains(t, alerts[0], tt.err.Error())
			assert.False(t, e.app.Client.State().SignedIn)
			assert.False(t, e.app.Client.State().SigningIn)
		})
	}

	t.Run("state mismatch", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		hc := &http.Client{
			Jar:           jar,
			CheckRedirect: noRedirect.CheckRedirect,
		}

		resp, _ := do(t, hc, http.MethodGet, e.web.URL+"/auth/login")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, subsync.CallbackPath, loc.Path)
		assert.NotEmpty(t, loc.Query().Get("state"))

		resp, _ = do(t, hc, http.MethodGet, e.web.URL+subsync.CallbackPath+"?state=forged&code=ada")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Len(t, e.ui.Alerts(), 1)
		assert.Contains(t, e.ui.Alerts()[0], subsync.ErrInvalidState.Error())
		assert.False(t, e.app.Client.State().SignedIn)
	})

	t.Run("provider denied", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		hc := &http.Client{Jar: jar, CheckRedirect: noRedirect.CheckRedirect}

		resp, _ := do(t, hc, http.MethodGet, e.web.URL+"/auth/login")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)

		q := url.Values{"state": {loc.Query().Get("state")}, "error": {"access_denied"}}
		resp, _ = do(t, hc, http.MethodGet, e.web.URL+subsync.CallbackPath+"?"+q.Encode())
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Len(t, e.ui.Alerts(), 1)
		assert.Contains(t, e.ui.Alerts()[0], "access_denied")
		assert.False(t, e.app.Client.State().SignedIn)
	})
}

func TestHandler_NoAuthenticator(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	h := e.app.Handler(e.ui.Hub)

	for _, path := range []string{"/auth/login", subsync.CallbackPath} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHandler_Metrics(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	resp, body := do(t, http.DefaultClient, http.MethodGet, e.web.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `subsync_identity_transitions_total{state="signed_out"} 1`)
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		resp, body := do(t, http.DefaultClient, http.MethodGet, e.web.URL+"/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", body)
	})

	t.Run("failing check", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, subsync.WithHealthChecks(func(*http.Request) error { return errors.New("backend down") }))
		resp, body := do(t, http.DefaultClient, http.MethodGet, e.web.URL+"/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "unavailable", body)
	})
}
