package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, AuthJWT, cfg.AuthProvider)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 3, cfg.GeneratorBurst)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "none")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("GENERATOR_RPS", "1.5")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.InDelta(t, 1.5, cfg.GeneratorRPS, 1e-9)
	assert.Equal(t, "json", cfg.LogFormat)

	t.Setenv("STORE_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "STORE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	base := Config{StoreBackend: BackendMemory, AuthProvider: AuthNone, StoreTimeout: time.Second, LogFormat: "json"}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"split needs both urls": func(c *Config) { c.StoreBackend = BackendSplit; c.MongoURI = "mongodb://x" },
		"postgres needs url":    func(c *Config) { c.StoreBackend = BackendPostgres },
		"unknown backend":       func(c *Config) { c.StoreBackend = "redis" },
		"jwt needs secret":      func(c *Config) { c.AuthProvider = AuthJWT },
		"no auth in production": func(c *Config) { c.Env = "production" },
		"non positive timeout":  func(c *Config) { c.StoreTimeout = 0 },
		"unknown log format":    func(c *Config) { c.LogFormat = "xml" },
		"unknown auth provider": func(c *Config) { c.AuthProvider = "saml" },
		"firebase needs creds":  func(c *Config) { c.AuthProvider = AuthFirebase },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
