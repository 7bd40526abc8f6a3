// Package webview is the browser front end of the client.
//
// Hub implements view.Renderer, view.Notifier and view.Navigator. It keeps
// the latest frame and fans every change out to the browsers connected to
// its Stream handler, which holds a Datastar server-sent event stream open
// per tab. Frames are sent as one morph patch of the whole app element, so a
// browser that missed intermediate frames still converges on the current
// state.
//
// The markup is built from templ components in components.go.
package webview
