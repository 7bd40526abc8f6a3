package subsync

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/subsync/internal/devbackend"
	"github.com/dmitrymomot/subsync/pkg/config"
	"github.com/dmitrymomot/subsync/pkg/cookie"
	"github.com/dmitrymomot/subsync/pkg/gateway"
	"github.com/dmitrymomot/subsync/pkg/httpserver"
	"github.com/dmitrymomot/subsync/pkg/identity"
	"github.com/dmitrymomot/subsync/pkg/logger"
	"github.com/dmitrymomot/subsync/pkg/redis"
	"github.com/dmitrymomot/subsync/pkg/requestid"
)

// ServiceName tags every log record.
const ServiceName = "subsync"

// Config is the complete environment configuration.
type Config struct {
	Env       string        `env:"APP_ENV" envDefault:"development"`
	LogLevel  string        `env:"LOG_LEVEL"`
	LogFormat logger.Format `env:"LOG_FORMAT"`

	// Locale is an Accept-Language style preference list.
	Locale   string `env:"LOCALE" envDefault:"en"`
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`

	// IDToken starts the client signed in with a raw id token.
	IDToken string `env:"ID_TOKEN"`

	Backend gateway.Config
	Google  identity.GoogleConfig
	HTTP    httpserver.Config
	Cookie  cookie.Config
	Dev     devbackend.Config
	Redis   redis.Config
}

// LoadConfig reads Config from the environment and an optional .env file.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Logger builds the process logger. The environment preset is applied
// first; LOG_LEVEL and LOG_FORMAT override it when set, and extra comes last.
func (c Config) Logger(extra ...logger.Option) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(c.Env, ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if c.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("%w: log level %q: %w", ErrInvalidConfig, c.LogLevel, err)
		}
		opts = append(opts, logger.WithLevel(lvl))
	}
	switch c.LogFormat {
	case "":
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(c.LogFormat))
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return logger.New(append(opts, extra...)...), nil
}
