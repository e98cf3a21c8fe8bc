// Package config provides configuration management for the rate limit client
// and its fixture server, layered through viper and decoded with mapstructure.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

const (
	// AppName names the XDG config directory.
	AppName = "ratelimit"

	// EnvPrefix is the prefix for environment overrides, e.g. RATELIMIT_CLIENT_BASE_URL.
	EnvPrefix = "RATELIMIT"
)

// SetDefaults registers default configuration values on v.
func SetDefaults(v *viper.Viper) {
	// Client defaults
	v.SetDefault("client.base_url", "")
	v.SetDefault("client.path_prefix", "/api/v1")
	v.SetDefault("client.addressing", ratelimit.AddressingPath.String())
	v.SetDefault("client.identifier", "")
	v.SetDefault("client.token", "")
	v.SetDefault("client.timeout", "30s")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.path_prefix", "/api/v1")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.request_limit", 0)
	v.SetDefault("server.request_window", "1m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "SIMPLE")
}

// BindEnv enables RATELIMIT_* environment overrides on v. Nested keys map
// with dots replaced by underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings held by v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings(v)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// settings rebuilds the nested settings map from every known key so that
// environment-only values, which AllSettings omits for unset keys, are seen.
func settings(v *viper.Viper) map[string]any {
	out := map[string]any{}
	for _, key := range v.AllKeys() {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			next, ok := node[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[part] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = v.Get(key)
	}
	return out
}

// Validate checks the client settings needed to reach the service.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.Client.BaseURL)
	if base == "" {
		return fmt.Errorf("client.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("client.base_url %q is not an absolute URL", base)
	}
	if _, err := ratelimit.ParseAddressing(c.Client.Addressing); err != nil {
		return fmt.Errorf("client.addressing: %w", err)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	return nil
}

// ValidateServer checks the fixture server settings.
func (c *Config) ValidateServer() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Server.RequestLimit < 0 {
		return fmt.Errorf("server.request_limit must not be negative")
	}
	if c.Server.RequestLimit > 0 && c.Server.RequestWindow <= 0 {
		return fmt.Errorf("server.request_window must be positive when request_limit is set")
	}
	return nil
}

// DefaultConfigDir returns the XDG config directory for the app.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(AppName)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := DefaultConfigDir()
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}
