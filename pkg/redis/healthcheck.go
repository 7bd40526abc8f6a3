package redis

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/subsync/pkg/httpserver"
)

// Healthcheck pings client with the health request's context.
func Healthcheck(client redis.UniversalClient) httpserver.Check {
	return func(r *http.Request) error {
		if err := client.Ping(r.Context()).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
