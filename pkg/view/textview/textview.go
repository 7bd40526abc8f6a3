// Package textview renders client frames as plain text. It implements the
// Renderer, Notifier and Navigator of package view on top of an io.Writer,
// which is what the command-line front end uses.
package textview

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrymomot/subsync/pkg/qrcode"
	"github.com/dmitrymomot/subsync/pkg/view"
)

// Terminal writes frames, alerts and navigation targets to an io.Writer.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	live    bool
	qr      bool
	inverse bool
	last    view.Frame
	frames  int
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithLive prints every frame as it arrives instead of only on Flush.
func WithLive() Option {
	return func(t *Terminal) { t.live = true }
}

// WithoutQR disables the QR code printed on navigation.
func WithoutQR() Option {
	return func(t *Terminal) { t.qr = false }
}

// WithInverseQR draws the QR code for light-on-dark terminals.
func WithInverseQR() Option {
	return func(t *Terminal) { t.inverse = true }
}

// New returns a Terminal writing to w.
func New(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{w: w, qr: true}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render records f and prints it in live mode.
func (t *Terminal) Render(_ context.Context, f view.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = f
	t.frames++
	if !t.live {
		return nil
	}
	_, err := io.WriteString(t.w, Format(f))
	return err
}

// Flush prints the most recent frame.
func (t *Terminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := io.WriteString(t.w, Format(t.last))
	return err
}

// Last returns the most recent frame and how many frames were rendered.
func (t *Terminal) Last() (view.Frame, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.frames
}

// Alert prints msg on its own line.
func (t *Terminal) Alert(_ context.Context, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.w, "! %s\n", msg)
}

// Navigate prints url, followed by a QR code unless disabled.
func (t *Terminal) Navigate(_ context.Context, url string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := url
	if prefix := t.last.Labels.Redirecting; prefix != "" {
		line = prefix + " " + url
	}
	if _, err := fmt.Fprintln(t.w, line); err != nil {
		return err
	}
	if !t.qr {
		return nil
	}
	code, err := qrcode.Text(url, t.inverse)
	if err != nil {
		return err
	}
	_, err = io.WriteString(t.w, code)
	return err
}

// Format renders f as text, one visible region per line.
func Format(f view.Frame) string {
	var b strings.Builder
	l := f.Layout

	if l.Visible(view.RegionSignedOut) {
		fmt.Fprintf(&b, "%s\n", control(f.SignInLabel(), l.Enabled(view.RegionSignInButton)))
	}
	if l.Visible(view.RegionSignedIn) {
		fmt.Fprintf(&b, "%s %s\n", f.Labels.SignedInAs, f.DisplayName)
		fmt.Fprintf(&b, "%s\n", f.Labels.Title)
	}
	if l.Visible(view.RegionLoading) {
		fmt.Fprintf(&b, "  %s\n", f.Labels.Loading)
	}
	if l.Visible(view.RegionSubscription) && f.Subscription != nil {
		fmt.Fprintf(&b, "  %s\n", f.Subscription.Plan)
		fmt.Fprintf(&b, "  %s %s\n", f.Labels.Status, f.Subscription.Status)
		fmt.Fprintf(&b, "  %s %s\n", f.Labels.Ends, f.Subscription.PeriodEnd)
	}
	if l.Visible(view.RegionNoSubscription) {
		fmt.Fprintf(&b, "  %s\n", f.Labels.NoSubscription)
	}
	if l.Visible(view.RegionSubscribeButton) {
		fmt.Fprintf(&b, "%s\n", control(f.SubscribeLabel(), l.Enabled(view.RegionSubscribeButton)))
	}
	return b.String()
}

func control(label string, enabled bool) string {
	if enabled {
		return "[" + label + "]"
	}
	return "[" + label + "] (disabled)"
}
