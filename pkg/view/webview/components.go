package webview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/subsync/pkg/view"
)

// Element ids the hub patches.
const (
	AppID    = "app"
	AlertsID = "alerts"
)

// DatastarScript is the client bundle loaded by Page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Routes are the endpoints the page talks to.
type Routes struct {
	Stream    string
	Subscribe string
	SignIn    string
	SignOut   string
}

// DefaultRoutes matches the router built by the serve command.
var DefaultRoutes = Routes{
	Stream:    "/stream",
	Subscribe: "/actions/subscribe",
	SignIn:    "/auth/login",
	SignOut:   "/actions/signout",
}

func esc(s string) string { return templ.EscapeString(s) }

// Page renders the full document around App. Without a stream route the
// page is static.
func Page(f view.Frame, routes Routes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, "<title>%s</title>", esc(f.Labels.Title))
		fmt.Fprintf(&b, `<script type="module" src="%s"></script>`, DatastarScript)
		if routes.Stream != "" {
			fmt.Fprintf(&b, `</head><body data-init="@get('%s')">`, esc(routes.Stream))
		} else {
			b.WriteString("</head><body>")
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := App(f, routes).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<div id="%s"></div></body></html>`, AlertsID)
		return err
	})
}

// App renders every region of f inside the app element. Hidden regions are
// still emitted so the element set is the same for every frame.
func App(f view.Frame, routes Routes) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		l := f.Layout
		var b strings.Builder

		fmt.Fprintf(&b, `<main id="%s">`, AppID)

		open(&b, l, view.RegionSignedOut)
		if l.Enabled(view.RegionSignInButton) {
			fmt.Fprintf(&b, `<a id="%s" href="%s"%s>%s</a>`,
				view.RegionSignInButton.ID(), esc(routes.SignIn), hidden(l, view.RegionSignInButton), esc(f.SignInLabel()))
		} else {
			fmt.Fprintf(&b, `<a id="%s" aria-disabled="true"%s>%s</a>`,
				view.RegionSignInButton.ID(), hidden(l, view.RegionSignInButton), esc(f.SignInLabel()))
		}
		spinner(&b, l, view.RegionSignInSpinner)
		b.WriteString("</section>")

		open(&b, l, view.RegionSignedIn)
		fmt.Fprintf(&b, `<p>%s <strong id="user-name">%s</strong></p>`, esc(f.Labels.SignedInAs), esc(f.DisplayName))
		fmt.Fprintf(&b, `<button id="logout-btn" data-on:click="@post('%s')">%s</button>`, esc(routes.SignOut), esc(f.Labels.SignOut))
		fmt.Fprintf(&b, "<h2>%s</h2>", esc(f.Labels.Title))

		open(&b, l, view.RegionLoading)
		fmt.Fprintf(&b, "%s</section>", esc(f.Labels.Loading))

		open(&b, l, view.RegionSubscriptionList)
		open(&b, l, view.RegionSubscription)
		if s := f.Subscription; s != nil {
			fmt.Fprintf(&b, "<h3>%s</h3><p>%s %s</p><p>%s %s</p>",
				esc(s.Plan), esc(f.Labels.Status), esc(s.Status), esc(f.Labels.Ends), esc(s.PeriodEnd))
		}
		b.WriteString("</section>")
		open(&b, l, view.RegionNoSubscription)
		fmt.Fprintf(&b, "%s</section>", esc(f.Labels.NoSubscription))
		b.WriteString("</section></section>")

		disabled := ""
		if !l.Enabled(view.RegionSubscribeButton) {
			disabled = " disabled"
		}
		fmt.Fprintf(&b, `<button id="%s" data-on:click="@post('%s')"%s%s>%s</button>`,
			view.RegionSubscribeButton.ID(), esc(routes.Subscribe), hidden(l, view.RegionSubscribeButton), disabled, esc(f.SubscribeLabel()))
		spinner(&b, l, view.RegionSubscribeSpinner)

		b.WriteString("</main>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Dialog renders a blocking message.
func Dialog(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div id="%s"><dialog open><p>%s</p><form method="dialog"><button>OK</button></form></dialog></div>`,
			AlertsID, esc(msg))
		return err
	})
}

// Handoff shows the checkout link and its QR code while the browser is
// being redirected. qr may be empty. Links with an unsafe scheme are
// neutralized by templ.URL.
func Handoff(label, url, qr string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		href := string(templ.URL(url))
		fmt.Fprintf(&b, `<div id="%s"><dialog open><p>%s <a href="%s">%s</a></p>`, AlertsID, esc(label), esc(href), esc(url))
		if qr != "" {
			fmt.Fprintf(&b, `<img src="%s" alt="">`, esc(qr))
		}
		b.WriteString("</dialog></div>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func hidden(l view.Layout, r view.Region) string {
	if l.Visible(r) {
		return ""
	}
	return " hidden"
}

func open(b *strings.Builder, l view.Layout, r view.Region) {
	fmt.Fprintf(b, `<section id="%s"%s>`, r.ID(), hidden(l, r))
}

func spinner(b *strings.Builder, l view.Layout, r view.Region) {
	fmt.Fprintf(b, `<span id="%s" class="spinner" aria-busy="true"%s></span>`, r.ID(), hidden(l, r))
}
