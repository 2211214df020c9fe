package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the backend the bridge was written against.
const (
	DefaultBackendURL   = "http://localhost:3000"
	DefaultTimeout      = 10 * time.Second
	DefaultProbeTimeout = 2 * time.Second
)

// Environment variables recognized by the bridge
const (
	EnvBackendURL = "WXBRIDGE_BACKEND_URL"
	EnvTimeout    = "WXBRIDGE_TIMEOUT"
)

// Config holds the bridge's process-wide settings. It is fixed at startup
// and never mutated afterward.
type Config struct {
	// BackendURL is the base address of the weather backend
	BackendURL string

	// Timeout bounds each backend tool call
	Timeout time.Duration

	// ProbeTimeout bounds the one-time startup liveness probe
	ProbeTimeout time.Duration

	// Verbose enables debug logging on stderr
	Verbose bool
}

// fileConfig is the YAML shape of the optional config file. Durations are
// strings so "10s" works.
type fileConfig struct {
	BackendURL   string `yaml:"backend_url"`
	Timeout      string `yaml:"timeout"`
	ProbeTimeout string `yaml:"probe_timeout"`
	Verbose      *bool  `yaml:"verbose"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		BackendURL:   DefaultBackendURL,
		Timeout:      DefaultTimeout,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// Load builds configuration from the defaults, an optional YAML file, and
// environment overrides, in that order. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}

		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err := cfg.merge(&fc); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(fc *fileConfig) error {
	if fc.BackendURL != "" {
		c.BackendURL = fc.BackendURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		c.Timeout = d
	}
	if fc.ProbeTimeout != "" {
		d, err := time.ParseDuration(fc.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("invalid probe_timeout %q: %w", fc.ProbeTimeout, err)
		}
		c.ProbeTimeout = d
	}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		c.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend URL %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL %q must use http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL %q has no host", c.BackendURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}
