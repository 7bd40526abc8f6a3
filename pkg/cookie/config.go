package cookie

import (
	"strings"
)

// Config is loaded from the environment. Secrets is a comma-separated list.
type Config struct {
	Secrets string `env:"COOKIE_SECRETS"`
	Secure  bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

// NewFromConfig builds a Manager from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	var secrets []string
	for _, s := range strings.Split(cfg.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return New(secrets, append([]Option{WithSecure(cfg.Secure)}, opts...)...)
}
