package config

import (
	"github.com/flowcanvas/flowcanvas/session"
)

// Defaults returns the baseline configuration before file and environment
// overrides.
func Defaults() *Config {
	return &Config{
		Backend: session.ClientConfig{
			BaseURL:    "http://localhost:8000",
			InvokePath: session.DefaultInvokePath,
			Timeout:    0, // streams run until the transport ends them
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Addr:      ":9090",
			Namespace: "flowcanvas",
		},
		Mock: MockConfig{
			Addr: ":8000",
		},
	}
}
