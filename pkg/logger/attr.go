package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under the key "error".
// A nil error yields an empty Attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under the key "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Component records the emitting component, e.g. "session_controller".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// IdentityID records the signed-in identity under "identity_id".
// An empty id yields an empty Attr.
func IdentityID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("identity_id", id)
}

// Generation records the identity transition counter.
func Generation(gen uint64) slog.Attr {
	return slog.Uint64("generation", gen)
}

// Outcome records how a flow terminated.
func Outcome(outcome string) slog.Attr {
	return slog.String("outcome", outcome)
}

// Endpoint records the backend method and path, e.g. "GET /me/subscription".
func Endpoint(method, path string) slog.Attr {
	return slog.String("endpoint", method+" "+path)
}

// StatusCode records an HTTP status code.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// RequestID records the request identifier under "request_id".
// An empty id yields an empty Attr.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Duration records an elapsed time in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64("duration_ms", d.Milliseconds())
}

// Event records the event name under "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
