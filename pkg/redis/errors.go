package redis

import "errors"

var (
	ErrEmptyURL          = errors.New("redis: connection url is empty")
	ErrParseURL          = errors.New("redis: failed to parse connection url")
	ErrNotReady          = errors.New("redis: server did not become ready in time")
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
