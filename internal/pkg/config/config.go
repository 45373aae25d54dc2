package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// UpstreamConfig points at the registry REST services. All three
// datasets usually live under one geodata base URL, but each can be
// overridden separately for testing against a stub.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	NVRURL         string `mapstructure:"nvr_url"`
	Natura2000URL  string `mapstructure:"natura2000_url"`
	RamsarURL      string `mapstructure:"ramsar_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// URLFor returns the base URL for one dataset, falling back to the
// shared base URL.
func (u UpstreamConfig) URLFor(dataset string) string {
	switch dataset {
	case "nvr":
		if u.NVRURL != "" {
			return u.NVRURL
		}
	case "natura2000":
		if u.Natura2000URL != "" {
			return u.Natura2000URL
		}
	case "ramsar":
		if u.RamsarURL != "" {
			return u.RamsarURL
		}
	}
	return u.BaseURL
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("upstream.base_url", "https://geodata.naturvardsverket.se/rest/v3")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SKYDDADNATUR_UPSTREAM_BASE_URL → upstream.base_url
	v.SetEnvPrefix("SKYDDADNATUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		errs = append(errs, "upstream.timeout_seconds must be positive")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey.enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
