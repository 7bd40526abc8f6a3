package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/subsync/pkg/logger"
)

// Check reports whether a dependency is usable.
type Check func(r *http.Request) error

// HealthHandler answers 200 "ok" when every check passes and 503 with the
// failing check's error otherwise. Without checks it only reports liveness.
func HealthHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, check := range checks {
			if err := check(r); err != nil {
				log.WarnContext(r.Context(), "health check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	}
}
