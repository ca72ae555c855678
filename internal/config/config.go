// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

// Package config loads chatloop configuration from defaults, an
// optional YAML file, and command-line flags, in that order of
// precedence (later wins).
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
	"golang.org/x/crypto/bcrypt"

	"github.com/chatloop/chatloop/internal/auth"
	"github.com/chatloop/chatloop/internal/token"
)

// Config is the full chatloop configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the public API listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig configures the observability listener. An empty
// address disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection. URL falls back
// to the DATABASE_URL environment variable when unset.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig configures credential handling and session tokens.
// Secret falls back to the CHATLOOP_JWT_SECRET environment variable
// when unset; it should never live in a config file checked into
// version control.
type AuthConfig struct {
	Secret       string        `koanf:"secret"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
	BcryptCost   int           `koanf:"bcrypt_cost"`
	CookieSecure bool          `koanf:"cookie_secure"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Metrics:  MetricsConfig{Addr: "127.0.0.1:9100"},
		Database: DatabaseConfig{},
		Auth: AuthConfig{
			TokenTTL:   token.DefaultTTL,
			BcryptCost: auth.DefaultBcryptCost,
		},
		Log: LogConfig{Format: "json"},
	}
}

// Load builds the configuration. path names an optional YAML file;
// flags, when non-nil, override file values (flag names are the dotted
// config keys).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = os.Getenv("CHATLOOP_JWT_SECRET")
	}

	return &cfg, nil
}

// Validate checks the configuration for serving. Load does not call
// it; commands that only need part of the config (migrate) validate
// what they use.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.addr is required")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database.url is required (or set DATABASE_URL)")
	}
	if c.Auth.Secret == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("auth.secret is required (or set CHATLOOP_JWT_SECRET)")
	}
	if len(c.Auth.Secret) < 32 {
		return oops.Code("CONFIG_INVALID").
			Errorf("auth.secret must be at least 32 bytes")
	}
	if c.Auth.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.token_ttl must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return oops.Code("CONFIG_INVALID").
			With("min", bcrypt.MinCost).
			With("max", bcrypt.MaxCost).
			Errorf("auth.bcrypt_cost %d is out of range", c.Auth.BcryptCost)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log.format %q must be 'json' or 'text'", c.Log.Format)
	}
	return nil
}
