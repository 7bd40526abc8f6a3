package view

// Input is the state tuple the layout is derived from.
type Input struct {
	SignedIn        bool
	HasSubscription bool
	Loading         bool
	Processing      bool
	SigningIn       bool
}

// RegionState is the derived state of one region. Enabled matters for
// controls; display regions report Enabled equal to Visible.
type RegionState struct {
	Visible bool
	Enabled bool
}

// Layout holds a RegionState for every region. It is comparable, so two
// layouts can be checked for equality with ==.
type Layout [regionCount]RegionState

// Get returns the state of r.
func (l Layout) Get(r Region) RegionState {
	if r < 0 || r >= regionCount {
		return RegionState{}
	}
	return l[r]
}

// Visible reports whether r is shown.
func (l Layout) Visible(r Region) bool { return l.Get(r).Visible }

// Enabled reports whether r accepts interaction.
func (l Layout) Enabled(r Region) bool { return l.Get(r).Enabled }

// Reconcile maps in to a complete layout.
func Reconcile(in Input) Layout {
	var l Layout

	panel := in.SignedIn && !in.Loading
	show := func(r Region, visible bool) { l[r] = RegionState{Visible: visible, Enabled: visible} }

	show(RegionSignedOut, !in.SignedIn)
	show(RegionSignedIn, in.SignedIn)
	show(RegionLoading, in.SignedIn && in.Loading)
	show(RegionSubscriptionList, panel)
	show(RegionSubscription, panel && in.HasSubscription)
	show(RegionNoSubscription, panel && !in.HasSubscription)
	show(RegionSubscribeSpinner, in.Processing)
	show(RegionSignInSpinner, in.SigningIn)

	// A subscribed user can never buy again; signed-out clicks are answered
	// with a sign-in prompt, so the button stays reachable there.
	l[RegionSubscribeButton] = RegionState{
		Visible: true,
		Enabled: !in.HasSubscription && !in.Processing,
	}
	l[RegionSignInButton] = RegionState{
		Visible: !in.SignedIn,
		Enabled: !in.SignedIn && !in.SigningIn,
	}

	return l
}
