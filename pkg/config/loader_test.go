package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subsync/pkg/config"
)

type defaultsConfig struct {
	URL     string        `env:"CFG_TEST_URL" envDefault:"http://localhost:8000"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"10s"`
}

type overrideConfig struct {
	URL string `env:"CFG_OVERRIDE_URL" envDefault:"http://localhost:8000"`
}

type prefixedConfig struct {
	Locale string `env:"LOCALE" envDefault:"en"`
}

type requiredConfig struct {
	Token string `env:"CFG_REQUIRED_TOKEN,required"`
}

type mustConfig struct {
	Token string `env:"CFG_MUST_TOKEN,required"`
}

type fileConfig struct {
	Value string `env:"CFG_FILE_VALUE"`
}

type cachedConfig struct {
	Value string `env:"CFG_CACHED_VALUE" envDefault:"first"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "http://localhost:8000", cfg.URL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CFG_OVERRIDE_URL", "https://api.example.com")

	var cfg overrideConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "https://api.example.com", cfg.URL)
}

func TestLoad_Prefix(t *testing.T) {
	t.Setenv("SUBSYNC_LOCALE", "de")

	var prefixed prefixedConfig
	require.NoError(t, config.Load(&prefixed, config.WithPrefix("SUBSYNC_")))
	assert.Equal(t, "de", prefixed.Locale)

	var plain prefixedConfig
	require.NoError(t, config.Load(&plain))
	assert.Equal(t, "en", plain.Locale)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("CFG_REQUIRED_TOKEN")

	var cfg requiredConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	t.Setenv("CFG_REQUIRED_TOKEN", "abc")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "abc", cfg.Token)
}

func TestLoad_Cached(t *testing.T) {
	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_CACHED_VALUE", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second)
}

func TestLoad_EnvFiles(t *testing.T) {
	os.Unsetenv("CFG_FILE_VALUE")
	t.Cleanup(func() { os.Unsetenv("CFG_FILE_VALUE") })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_FILE_VALUE=from-file\n"), 0o600))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg, config.WithEnvFiles(path)))
	assert.Equal(t, "from-file", cfg.Value)

	err := config.Load(&cfg, config.WithEnvFiles(filepath.Join(t.TempDir(), "missing.env")))
	assert.ErrorIs(t, err, config.ErrEnvFile)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *defaultsConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestMustLoad_Panics(t *testing.T) {
	os.Unsetenv("CFG_MUST_TOKEN")
	var cfg mustConfig
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
