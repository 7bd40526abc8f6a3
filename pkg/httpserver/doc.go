// Package httpserver runs an http.Handler until its context ends and then
// shuts it down gracefully.
//
// The listener is opened before Run reports the server as started, so Addr
// and the start hooks always see the real bound address, including the port
// picked for ":0". Signal handling is left to the caller: cancel the context
// passed to Run (for example with signal.NotifyContext).
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Long-lived responses such as server-sent event streams need a zero
// WriteTimeout, which is the default here.
package httpserver
