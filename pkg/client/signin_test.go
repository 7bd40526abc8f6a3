package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subsync/pkg/client"
	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/view"
)

func TestSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("publishes and verifies", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{}
		hub := identity.NewHub(nil)
		c, rec := newClient(t, hub, gw)
		stop := c.Start(ctx)
		defer stop()

		var busy bool
		err := c.SignIn(ctx, func(context.Context) (*identity.Identity, error) {
			busy = rec.last().Input.SigningIn
			id := user("u1", "Ada", "tok-1")
			hub.SignIn(id)
			return id, nil
		})
		require.NoError(t, err)
		c.Wait()

		assert.True(t, busy, "sign-in control is busy while the provider runs")
		f := rec.last()
		assert.False(t, f.Input.SigningIn)
		assert.True(t, f.Layout.Visible(view.RegionSignedIn))
		assert.Equal(t, "Ada", f.DisplayName)

		gw.mu.Lock()
		assert.Equal(t, []string{"tok-1"}, gw.verifications)
		gw.mu.Unlock()
		assert.Empty(t, rec.allAlerts())
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{}
		c, rec := newClient(t, identity.NewHub(nil), gw)

		err := c.SignIn(ctx, func(context.Context) (*identity.Identity, error) {
			return nil, errors.New("popup closed by user")
		})
		require.ErrorIs(t, err, client.ErrSignIn)
		assert.Equal(t, []string{"Login failed: popup closed by user"}, rec.allAlerts())
		assert.False(t, rec.last().Input.SigningIn)
		assert.True(t, rec.last().Layout.Enabled(view.RegionSignInButton))
		_, _, verifications := gw.counts()
		assert.Zero(t, verifications)
	})

	t.Run("no identity", func(t *testing.T) {
		t.Parallel()
		c, _ := newClient(t, identity.NewHub(nil), &fakeGateway{})
		err := c.SignIn(ctx, func(context.Context) (*identity.Identity, error) { return nil, nil })
		assert.ErrorIs(t, err, identity.ErrNoIdentity)
	})

	t.Run("verification transport failure is shown", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{verify: func(context.Context, string) error {
			return errors.Join(gateway.ErrRequestFailed, errors.New("offline"))
		}}
		c, rec := newClient(t, identity.NewHub(nil), gw)
		err := c.SignIn(ctx, func(context.Context) (*identity.Identity, error) {
			return user("u1", "Ada", "tok-1"), nil
		})
		require.ErrorIs(t, err, gateway.ErrRequestFailed)
		assert.Equal(t, []string{"Login failed: gateway: request failed: offline"}, rec.allAlerts())
	})

	t.Run("rejected verification is ignored", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{verify: func(context.Context, string) error {
			return &gateway.StatusError{Code: 401, Body: `{"detail":"Invalid token"}`}
		}}
		c, rec := newClient(t, identity.NewHub(nil), gw)
		err := c.SignIn(ctx, func(context.Context) (*identity.Identity, error) {
			return user("u1", "Ada", "tok-1"), nil
		})
		require.NoError(t, err)
		assert.Empty(t, rec.allAlerts())
	})

	t.Run("second call while busy", func(t *testing.T) {
		t.Parallel()
		c, _ := newClient(t, identity.NewHub(nil), &fakeGateway{})
		var inner error
		err := c.SignIn(ctx, func(ctx context.Context) (*identity.Identity, error) {
			inner = c.SignIn(ctx, func(context.Context) (*identity.Identity, error) { return nil, nil })
			return user("u1", "Ada", "tok-1"), nil
		})
		require.NoError(t, err)
		assert.ErrorIs(t, inner, client.ErrSignInInProgress)
	})
}
