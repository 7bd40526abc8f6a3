package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subsync/pkg/cookie"
)

const (
	secretA = "a-very-long-secret-for-testing-purposes-1"
	secretB = "a-very-long-secret-for-testing-purposes-2"
)

// roundTrip copies the cookies set on rec into a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	_, err = cookie.NewFromConfig(cookie.Config{Secrets: " , "})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	m, err := cookie.NewFromConfig(cookie.Config{Secrets: secretA + ", " + secretB, Secure: true})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	m.SetSigned(rec, "state", "x")
	c := rec.Result().Cookies()[0]
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "oauth_state", "abc123", cookie.WithMaxAge(600))
	assert.Equal(t, 600, rec.Result().Cookies()[0].MaxAge)

	v, err := m.GetSigned(roundTrip(rec), "oauth_state")
	require.NoError(t, err)
	assert.Equal(t, "abc123", v)

	_, err = m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "oauth_state")
	assert.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestTampering(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "s", "value")
	signed := rec.Result().Cookies()[0].Value

	for name, forged := range map[string]string{
		"no separator": strings.ReplaceAll(signed, "|", ""),
		"bad base64":   "!!!|" + strings.SplitN(signed, "|", 2)[1],
		"other value":  "b3RoZXI=|" + strings.SplitN(signed, "|", 2)[1],
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "s", Value: forged})
		_, err := m.GetSigned(r, "s")
		assert.Error(t, err, name)
	}
}

func TestRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	old.SetSigned(rec, "s", "value")

	v, err := rotated.GetSigned(roundTrip(rec), "s")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	fresh, err := cookie.New([]string{secretB})
	require.NoError(t, err)
	_, err = fresh.GetSigned(roundTrip(rec), "s")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestPop(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.SetSigned(rec, "state", "once")

	out := httptest.NewRecorder()
	v, err := m.Pop(out, roundTrip(rec), "state")
	require.NoError(t, err)
	assert.Equal(t, "once", v)

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
