package view

import (
	"context"
	"time"
)

// Subscription is the subscription content shown on the panel.
type Subscription struct {
	Plan      string
	Status    string
	PeriodEnd time.Time
}

// State is the client model a Frame is derived from. It is never stored by
// the view; callers pass a fresh copy on every change.
type State struct {
	SignedIn     bool
	DisplayName  string
	Subscription *Subscription
	Loading      bool
	Processing   bool
	SigningIn    bool
}

// Input projects s onto the reconciler tuple.
func (s State) Input() Input {
	return Input{
		SignedIn:        s.SignedIn,
		HasSubscription: s.Subscription != nil,
		Loading:         s.Loading,
		Processing:      s.Processing,
		SigningIn:       s.SigningIn,
	}
}

// SubscriptionView is a subscription formatted for display.
type SubscriptionView struct {
	Plan      string
	Status    string
	PeriodEnd string
}

// Frame is one complete rendering of the UI.
type Frame struct {
	Layout       Layout
	Input        Input
	Labels       Labels
	DisplayName  string
	Subscription *SubscriptionView
}

// SubscribeLabel is the purchase control label for the current state.
func (f Frame) SubscribeLabel() string {
	if f.Input.Processing {
		return f.Labels.Processing
	}
	return f.Labels.Subscribe
}

// SignInLabel is the sign-in control label for the current state.
func (f Frame) SignInLabel() string {
	if f.Input.SigningIn {
		return f.Labels.SigningIn
	}
	return f.Labels.SignIn
}

// Presenter turns a State into a Frame using one set of labels.
type Presenter struct {
	labels   Labels
	location *time.Location
}

// NewPresenter returns a presenter formatting dates in loc. A nil loc means UTC.
func NewPresenter(labels Labels, loc *time.Location) *Presenter {
	if loc == nil {
		loc = time.UTC
	}
	return &Presenter{labels: labels, location: loc}
}

// DefaultPresenter uses the default locale of the built-in catalog.
func DefaultPresenter() *Presenter {
	return NewPresenter(DefaultCatalog().Labels(DefaultLocale), time.UTC)
}

// Labels returns the presenter's labels.
func (p *Presenter) Labels() Labels { return p.labels }

// FormatDate renders t as a calendar date in the presenter's location.
func (p *Presenter) FormatDate(t time.Time) string {
	return t.In(p.location).Format(p.labels.DateLayout)
}

// Present derives the frame for s.
func (p *Presenter) Present(s State) Frame {
	in := s.Input()
	f := Frame{
		Layout: Reconcile(in),
		Input:  in,
		Labels: p.labels,
	}
	if s.SignedIn {
		f.DisplayName = s.DisplayName
	}
	if s.SignedIn && s.Subscription != nil {
		f.Subscription = &SubscriptionView{
			Plan:      s.Subscription.Plan,
			Status:    s.Subscription.Status,
			PeriodEnd: p.FormatDate(s.Subscription.PeriodEnd),
		}
	}
	return f
}

// Renderer applies a frame to a UI surface.
type Renderer interface {
	Render(ctx context.Context, f Frame) error
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(ctx context.Context, msg string)
}

// Navigator leaves the page for url.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx context.Context, f Frame) error

func (fn RenderFunc) Render(ctx context.Context, f Frame) error { return fn(ctx, f) }

// AlertFunc adapts a function to Notifier.
type AlertFunc func(ctx context.Context, msg string)

func (fn AlertFunc) Alert(ctx context.Context, msg string) { fn(ctx, msg) }

// NavigateFunc adapts a function to Navigator.
type NavigateFunc func(ctx context.Context, url string) error

func (fn NavigateFunc) Navigate(ctx context.Context, url string) error { return fn(ctx, url) }

// Nop discards frames, alerts and navigation.
type Nop struct{}

func (Nop) Render(context.Context, Frame) error    { return nil }
func (Nop) Alert(context.Context, string)          {}
func (Nop) Navigate(context.Context, string) error { return nil }
