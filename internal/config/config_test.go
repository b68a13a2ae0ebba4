package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:             DefaultPort,
		Namespace:        DefaultNamespace,
		SessionKeepCount: DefaultKeepCount,
		MaxDiffLines:     DefaultMaxDiffLines,
		RatePerSecond:    DefaultRatePerSecond,
		RateBurst:        DefaultRateBurst,
		LogLevel:         "info",
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, ErrInvalidPort},
		{"port too high", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"keep count zero", func(c *Config) { c.SessionKeepCount = 0 }, ErrInvalidKeepCount},
		{"negative diff limit", func(c *Config) { c.MaxDiffLines = -1 }, ErrInvalidDiffLimit},
		{"negative rate", func(c *Config) { c.RatePerSecond = -5 }, ErrInvalidRate},
		{"empty namespace", func(c *Config) { c.Namespace = "" }, ErrInvalidNamespace},
		{"namespace with separator", func(c *Config) { c.Namespace = "a/b" }, ErrInvalidNamespace},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ZeroRateAndDiffCapAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.MaxDiffLines = 0
	cfg.RatePerSecond = 0
	cfg.RateBurst = 0
	require.NoError(t, cfg.Validate())
}

func TestResolveStorageRoot_Explicit(t *testing.T) {
	cfg := validConfig()
	cfg.StorageRoot = "/srv/canvas"

	root, err := cfg.ResolveStorageRoot()
	require.NoError(t, err)
	assert.Equal(t, "/srv/canvas", root)
}

func TestResolveStorageRoot_DefaultsToWorkingDir(t *testing.T) {
	cfg := validConfig()

	root, err := cfg.ResolveStorageRoot()
	require.NoError(t, err)
	assert.NotEmpty(t, root)
}

func TestAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 19960
	assert.Equal(t, "127.0.0.1:19960", cfg.Addr())
}
