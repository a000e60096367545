package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-contacts-cache/cache"
	"github.com/goliatone/go-contacts-cache/internal/cacheinfra"
	"github.com/goliatone/go-contacts-cache/internal/logging"
	"github.com/goliatone/go-contacts-cache/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. CONTACTS_DB_DSN.
const EnvPrefix = "CONTACTS_"

// Config is the process configuration.
type Config struct {
	Server ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Log    logging.Config `yaml:"log" envPrefix:"LOG_"`
	DB     store.Config   `yaml:"database" envPrefix:"DB_"`
	Cache  cache.Config   `yaml:"cache" envPrefix:"CACHE_"`
}

// ConfigError names the invalid field of a configuration section.
type ConfigError = cacheinfra.ConfigError

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Default returns a configuration that runs locally without external
// services: in-memory SQLite and the in-process cache.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:   logging.DefaultConfig(),
		DB:    store.DefaultConfig(),
		Cache: cache.DefaultConfig(),
	}
}

// Load layers the YAML file at path (optional) and CONTACTS_ environment
// variables over Default, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid section at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, &ConfigError{Field: "Server.Addr", Message: "listen address is required"})
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, &ConfigError{Field: "Server.ShutdownTimeout", Message: "must not be negative"})
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, &ConfigError{Field: "Log", Message: err.Error()})
	}

	switch c.DB.Driver {
	case store.DriverPostgres, store.DriverSQLite:
	default:
		errs = append(errs, &ConfigError{Field: "DB.Driver", Message: fmt.Sprintf("unsupported driver %q", c.DB.Driver)})
	}
	if c.DB.DSN == "" {
		errs = append(errs, &ConfigError{Field: "DB.DSN", Message: "dsn is required"})
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
