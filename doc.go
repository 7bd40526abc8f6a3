// Package subsync wires the subscription client to its collaborators: the
// backend gateway, an identity source, a UI handle and metrics.
//
// Front ends pick the UI. The terminal front end passes a textview.Terminal,
// the browser front end a webview.Hub, and both go through New:
//
//	cfg, err := subsync.LoadConfig()
//	if err != nil {
//		return err
//	}
//	app, err := subsync.New(cfg, textview.New(os.Stdout))
//	if err != nil {
//		return err
//	}
//	stop := app.Start(ctx)
//	defer stop()
//
// Handler exposes the browser routes on top of an App.
package subsync
