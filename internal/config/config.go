// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

// Package config loads and validates process-wide configuration. The
// resulting Config is immutable after startup and passed explicitly to
// constructors; there is no ambient mutable state.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults applied when neither file, flag nor environment provides a value.
const (
	DefaultAppName         = "PAPPI Calculator Auth API"
	DefaultAddr            = ":8000"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultAlgorithm       = "HS256"
	DefaultTokenTTLMinutes = 30
	DefaultLogFormat       = "json"
)

// Config is the complete application configuration.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// AppConfig identifies the service. Debug enables storage-layer query
// logging and nothing else.
type AppConfig struct {
	Name  string `koanf:"name"`
	Debug bool   `koanf:"debug"`
}

// ServerConfig holds the HTTP listen addresses.
type ServerConfig struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"`
}

// DatabaseConfig holds the PostgreSQL connection descriptor.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig holds token signing parameters, fixed at startup.
type AuthConfig struct {
	SecretKey       string `koanf:"secret_key"`
	Algorithm       string `koanf:"algorithm"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
}

// LogConfig controls log output.
type LogConfig struct {
	Format string `koanf:"format"`
}

// TokenTTL returns the configured token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":              "server.addr",
	"metrics-addr":      "server.metrics_addr",
	"database-url":      "database.url",
	"secret-key":        "auth.secret_key",
	"algorithm":         "auth.algorithm",
	"token-ttl-minutes": "auth.token_ttl_minutes",
	"app-name":          "app.name",
	"debug":             "app.debug",
	"log-format":        "log.format",
}

// RegisterFlags declares the configuration flags on the given flag set.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("addr", DefaultAddr, "HTTP API listen address")
	f.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	f.String("database-url", "", "PostgreSQL connection URL")
	f.String("secret-key", "", "token signing secret")
	f.String("algorithm", DefaultAlgorithm, "token signing algorithm (HS256, HS384 or HS512)")
	f.Int("token-ttl-minutes", DefaultTokenTTLMinutes, "access token lifetime in minutes")
	f.String("app-name", DefaultAppName, "application display name")
	f.Bool("debug", false, "enable storage-layer query logging")
	f.String("log-format", DefaultLogFormat, "log format (json or text)")
}

// Load builds the configuration: YAML file (if given), then command-line
// flags, then environment overrides for the secrets (DATABASE_URL,
// AUTH_SECRET_KEY). Later sources win for explicitly set values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "merge flags").Wrap(err)
		}
	}

	// Secrets come from the environment in deployments.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := k.Set("database.url", url); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "set database url").Wrap(err)
		}
	}
	if secret := os.Getenv("AUTH_SECRET_KEY"); secret != "" {
		if err := k.Set("auth.secret_key", secret); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "set secret key").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (set --database-url or DATABASE_URL)")
	}
	if c.Auth.SecretKey == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token signing secret is required (set --secret-key or AUTH_SECRET_KEY)")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("algorithm must be HS256, HS384 or HS512, got %q", c.Auth.Algorithm)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token TTL must be positive, got %d", c.Auth.TokenTTLMinutes)
	}
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("HTTP listen address is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}
