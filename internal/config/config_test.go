// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNxchange/back-pappi-calculator-auth/internal/config"
	"github.com/UNxchange/back-pappi-calculator-auth/pkg/errutil"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(f)
	require.NoError(t, f.Parse(args))
	return f
}

func TestLoad_Defaults(t *testing.T) {
	flags := newFlags(t,
		"--database-url", "postgres://localhost/auth",
		"--secret-key", "s3cr3t",
	)

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAppName, cfg.App.Name)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, config.DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, config.DefaultMetricsAddr, cfg.Server.MetricsAddr)
	assert.Equal(t, config.DefaultAlgorithm, cfg.Auth.Algorithm)
	assert.Equal(t, config.DefaultTokenTTLMinutes, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, config.DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: Test Auth
  debug: true
server:
  addr: ":9999"
database:
  url: postgres://localhost/fromfile
auth:
  secret_key: file-secret
  algorithm: HS512
  token_ttl_minutes: 5
log:
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Auth", cfg.App.Name)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "postgres://localhost/fromfile", cfg.Database.URL)
	assert.Equal(t, "file-secret", cfg.Auth.SecretKey)
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL())
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9999"
database:
  url: postgres://localhost/fromfile
auth:
  secret_key: file-secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	flags := newFlags(t, "--addr", ":7777")
	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.Addr, "explicit flag wins over file")
	assert.Equal(t, "postgres://localhost/fromfile", cfg.Database.URL, "file value kept when flag not set")
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fromenv")
	t.Setenv("AUTH_SECRET_KEY", "env-secret")

	flags := newFlags(t,
		"--database-url", "postgres://localhost/fromflag",
		"--secret-key", "flag-secret",
	)

	cfg, err := config.Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/fromenv", cfg.Database.URL)
	assert.Equal(t, "env-secret", cfg.Auth.SecretKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml", newFlags(t))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Server:   config.ServerConfig{Addr: ":8000"},
			Database: config.DatabaseConfig{URL: "postgres://localhost/auth"},
			Auth: config.AuthConfig{
				SecretKey:       "s3cr3t",
				Algorithm:       "HS256",
				TokenTTLMinutes: 30,
			},
			Log: config.LogConfig{Format: "json"},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing database url", mutate: func(c *config.Config) { c.Database.URL = "" }},
		{name: "missing secret key", mutate: func(c *config.Config) { c.Auth.SecretKey = "" }},
		{name: "unsupported algorithm", mutate: func(c *config.Config) { c.Auth.Algorithm = "RS256" }},
		{name: "non-positive ttl", mutate: func(c *config.Config) { c.Auth.TokenTTLMinutes = 0 }},
		{name: "missing listen address", mutate: func(c *config.Config) { c.Server.Addr = "" }},
		{name: "unknown log format", mutate: func(c *config.Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}
}
