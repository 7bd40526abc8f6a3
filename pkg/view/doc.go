// Package view derives the user interface from client state.
//
// Reconcile is a pure, total function from the state tuple
// (signed in, subscription present, loading, processing, signing in) to the
// visibility and enablement of every named Region. Front ends never patch
// regions incrementally: each state change produces a complete Frame, which
// keeps overlapping toggles (a spinner left behind after an error, say) from
// drifting apart.
//
// Renderer, Notifier and Navigator form the UI handle injected into the
// client. pkg/view/textview and pkg/view/webview implement them for a
// terminal and a browser.
package view
