package view_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/subsync/pkg/view"
)

// allInputs enumerates every state tuple.
func allInputs() []view.Input {
	var out []view.Input
	for bits := range 1 << 5 {
		out = append(out, view.Input{
			SignedIn:        bits&1 != 0,
			HasSubscription: bits&2 != 0,
			Loading:         bits&4 != 0,
			Processing:      bits&8 != 0,
			SigningIn:       bits&16 != 0,
		})
	}
	return out
}

func countVisible(l view.Layout, rs ...view.Region) int {
	n := 0
	for _, r := range rs {
		if l.Visible(r) {
			n++
		}
	}
	return n
}

func TestReconcile_ShellExclusive(t *testing.T) {
	t.Parallel()

	for _, in := range allInputs() {
		l := view.Reconcile(in)
		assert.Equal(t, 1, countVisible(l, view.RegionSignedOut, view.RegionSignedIn), "%+v", in)
		assert.Equal(t, in.SignedIn, l.Visible(view.RegionSignedIn), "%+v", in)
	}
}

func TestReconcile_PanelExclusive(t *testing.T) {
	t.Parallel()

	for _, in := range allInputs() {
		if !in.SignedIn {
			continue
		}
		l := view.Reconcile(in)
		assert.Equal(t, 1, countVisible(l, view.RegionLoading, view.RegionSubscription, view.RegionNoSubscription), "%+v", in)
		assert.Equal(t, !in.Loading, l.Visible(view.RegionSubscriptionList), "%+v", in)
		if in.Loading {
			assert.False(t, l.Visible(view.RegionSubscription), "%+v", in)
			assert.False(t, l.Visible(view.RegionNoSubscription), "%+v", in)
		}
	}
}

func TestReconcile_SignedOutHidesPanel(t *testing.T) {
	t.Parallel()

	for _, in := range allInputs() {
		if in.SignedIn {
			continue
		}
		l := view.Reconcile(in)
		assert.Zero(t, countVisible(l,
			view.RegionLoading,
			view.RegionSubscriptionList,
			view.RegionSubscription,
			view.RegionNoSubscription,
		), "%+v", in)
	}
}

func TestReconcile_PurchaseControl(t *testing.T) {
	t.Parallel()

	for _, in := range allInputs() {
		l := view.Reconcile(in)
		if in.HasSubscription {
			assert.False(t, l.Enabled(view.RegionSubscribeButton), "enabled with subscription: %+v", in)
		}
		assert.Equal(t, !in.HasSubscription && !in.Processing, l.Enabled(view.RegionSubscribeButton), "%+v", in)
		assert.Equal(t, in.Processing, l.Visible(view.RegionSubscribeSpinner), "%+v", in)
	}
}

func TestReconcile_SignInControl(t *testing.T) {
	t.Parallel()

	for _, in := range allInputs() {
		l := view.Reconcile(in)
		assert.Equal(t, in.SigningIn, l.Visible(view.RegionSignInSpinner), "%+v", in)
		if in.SigningIn {
			assert.False(t, l.Enabled(view.RegionSignInButton), "%+v", in)
		}
		if in.SignedIn {
			assert.False(t, l.Visible(view.RegionSignInButton), "%+v", in)
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range allInputs() {
		assert.Equal(t, view.Reconcile(in), view.Reconcile(in), "%+v", in)
	}
}

func TestReconcile_Total(t *testing.T) {
	t.Parallel()

	// Every region is derived from the input alone, so a region left over
	// from a previous state cannot leak into the next one.
	prev := view.Reconcile(view.Input{SignedIn: true, Loading: true, Processing: true})
	next := view.Reconcile(view.Input{SignedIn: true})
	assert.False(t, next.Visible(view.RegionLoading))
	assert.False(t, next.Visible(view.RegionSubscribeSpinner))
	assert.True(t, next.Visible(view.RegionNoSubscription))
	assert.NotEqual(t, prev, next)
}

func TestRegions(t *testing.T) {
	t.Parallel()

	ids := map[string]bool{}
	for _, r := range view.Regions() {
		id := r.ID()
		assert.NotEqual(t, "unknown", id)
		assert.False(t, ids[id], "duplicate id %q", id)
		ids[id] = true
	}
	assert.Len(t, ids, 10)
	assert.Equal(t, "subscribe-btn", view.RegionSubscribeButton.String())
	assert.Equal(t, "unknown", view.Region(-1).ID())
	assert.Equal(t, view.RegionState{}, view.Layout{}.Get(view.Region(99)))
}

func ExampleReconcile() {
	l := view.Reconcile(view.Input{SignedIn: true, HasSubscription: true})
	fmt.Println(l.Visible(view.RegionSubscription), l.Enabled(view.RegionSubscribeButton))
	// Output: true false
}
