// Package config provides environment-sourced configuration for the game
// server.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Environment mode values. The mode only changes startup log verbosity,
// never behavior.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the complete server configuration. Everything comes from the
// process environment (optionally seeded from a .env file by the caller);
// there is no configuration file.
type Config struct {
	// Port is the HTTP listen port. Env: PORT.
	Port int `mapstructure:"port"`
	// ClientOrigin is the browser origin allowed for cross-origin requests
	// and WebSocket upgrades. Env: CLIENT_ORIGIN.
	ClientOrigin string `mapstructure:"client_origin"`
	// Environment is the deployment mode. Env: ENVIRONMENT.
	Environment string `mapstructure:"environment"`
}

// Addr returns the ":port" listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks all configuration invariants.
func (c Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}
	if c.ClientOrigin == "" {
		errs = append(errs, "client_origin must not be empty")
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		errs = append(errs, fmt.Sprintf("environment must be one of [%s, %s], got %q",
			EnvDevelopment, EnvProduction, c.Environment))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Plain variable names: the server is commonly deployed behind
	// platforms that inject PORT directly.
	v.BindEnv("port", "PORT")
	v.BindEnv("client_origin", "CLIENT_ORIGIN")
	v.BindEnv("environment", "ENVIRONMENT")

	v.SetDefault("port", 5000)
	v.SetDefault("client_origin", "http://localhost:3000")
	v.SetDefault("environment", EnvDevelopment)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
