package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values resolve in order: defaults, config file, RATELIMIT_* environment
// variables, then command-line flags bound by the CLI.
type Config struct {
	Client  ClientConfig  `mapstructure:"client"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ClientConfig configures the rate limit transport client.
type ClientConfig struct {
	// BaseURL is the service origin, for example https://api.example.com
	BaseURL string `mapstructure:"base_url"`

	// PathPrefix is prepended to every endpoint path (default /api/v1)
	PathPrefix string `mapstructure:"path_prefix"`

	// Addressing selects how the caller identifier is sent.
	// Valid values: path, query
	Addressing string `mapstructure:"addressing"`

	Identifier string        `mapstructure:"identifier"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ServerConfig contains HTTP server configuration for the fixture service
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	PathPrefix      string        `mapstructure:"path_prefix"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RequestLimit caps rate limit requests per caller per RequestWindow.
	// Zero disables throttling.
	RequestLimit  int           `mapstructure:"request_limit"`
	RequestWindow time.Duration `mapstructure:"request_window"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}
