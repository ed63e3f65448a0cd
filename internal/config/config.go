// Package config provides configuration management for kuma-restore.
//
// Connection settings come from an optional YAML file with environment
// variable fallback for any unset field, so the tool works with a config
// file, env vars only, or a mix. Validation runs before any network
// activity: a missing URL or credential aborts the run up front.
//
// Environment variables:
//   - KUMA_URL:      base URL of the Uptime Kuma server (http/https)
//   - KUMA_USERNAME: login username
//   - KUMA_PASSWORD: login password
//   - KUMA_TIMEOUT:  per-call timeout in seconds (default 60)
//
// Example configuration:
//
//	url: https://status.example.com
//	username: admin
//	timeout_seconds: 90
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const Version = "1.0.0"

const (
	EnvURL      = "KUMA_URL"
	EnvUsername = "KUMA_USERNAME"
	EnvPassword = "KUMA_PASSWORD"
	EnvTimeout  = "KUMA_TIMEOUT"
)

const defaultTimeoutSeconds = 60

// Config holds the connection settings for the target Uptime Kuma server.
type Config struct {
	URL            string `yaml:"url"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads the YAML file at path (skipped when path is empty), fills any
// unset field from the environment, applies defaults, and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
		}
	}

	if cfg.URL == "" {
		cfg.URL = os.Getenv(EnvURL)
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv(EnvUsername)
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv(EnvPassword)
	}
	if cfg.TimeoutSeconds == 0 {
		if raw := os.Getenv(EnvTimeout); raw != "" {
			seconds, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q: %w", EnvTimeout, raw, err)
			}
			cfg.TimeoutSeconds = seconds
		}
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// FromEnv loads the configuration from environment variables alone.
func FromEnv() (*Config, error) {
	return Load("")
}

// Validate checks that every required connection setting is present and the
// server URL is usable.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("server URL is required (set %s or the url config key)", EnvURL)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.URL, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("invalid server URL %q: scheme must be http(s) or ws(s)", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server URL %q: missing host", c.URL)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required (set %s or the username config key)", EnvUsername)
	}
	if c.Password == "" {
		return fmt.Errorf("password is required (set %s or the password config key)", EnvPassword)
	}
	return nil
}

// Timeout returns the per-call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
