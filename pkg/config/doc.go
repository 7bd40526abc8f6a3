// Package config loads environment configuration into tagged structs.
//
// Fields use github.com/caarlos0/env tags. A .env file in the working
// directory is read once (if present) before the first load, and each
// configuration type is parsed at most once per prefix:
//
//	type GatewayConfig struct {
//		BaseURL string        `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
//		Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg GatewayConfig
//	if err := config.Load(&cfg, config.WithPrefix("SUBSYNC_")); err != nil {
//		return err
//	}
package config
