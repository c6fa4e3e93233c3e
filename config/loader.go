// Package config loads flowcanvas configuration from YAML files with
// environment-variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("FLOWCANVAS").
//	    Load()
//
// Precedence: defaults -> YAML file -> environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flowcanvas/flowcanvas/session"
)

// Config is the complete flowcanvas configuration.
type Config struct {
	// Backend is the execution engine the session talks to.
	Backend session.ClientConfig `yaml:"backend"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Metrics configures the prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Mock configures the local scripted backend used for development.
	Mock MockConfig `yaml:"mock"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format: json or console.
	Format string `yaml:"format"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// MockConfig configures the scripted development backend.
type MockConfig struct {
	Addr       string `yaml:"addr"`
	ScriptPath string `yaml:"script_path"`
}

// Loader loads configuration with the usual precedence chain.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a config loader.
func NewLoader() *Loader {
	return &Loader{envPrefix: "FLOWCANVAS"}
}

// WithConfigPath sets the YAML file to load. Optional; without it only
// defaults and environment apply.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load resolves the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	l.envString("BACKEND_BASE_URL", &cfg.Backend.BaseURL)
	l.envString("BACKEND_INVOKE_PATH", &cfg.Backend.InvokePath)
	l.envDuration("BACKEND_TIMEOUT", &cfg.Backend.Timeout)
	l.envString("LOG_LEVEL", &cfg.Log.Level)
	l.envString("LOG_FORMAT", &cfg.Log.Format)
	l.envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	l.envString("METRICS_ADDR", &cfg.Metrics.Addr)
	l.envString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	l.envString("MOCK_ADDR", &cfg.Mock.Addr)
	l.envString("MOCK_SCRIPT_PATH", &cfg.Mock.ScriptPath)
}

func (l *Loader) lookup(key string) (string, bool) {
	return os.LookupEnv(l.envPrefix + "_" + key)
}

func (l *Loader) envString(key string, dst *string) {
	if v, ok := l.lookup(key); ok {
		*dst = v
	}
}

func (l *Loader) envBool(key string, dst *bool) {
	if v, ok := l.lookup(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func (l *Loader) envDuration(key string, dst *time.Duration) {
	if v, ok := l.lookup(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("backend.base_url %q is not a valid http(s) URL", c.Backend.BaseURL)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, console", c.Log.Format)
	}
	return nil
}
