// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (PLANNER_* override)
//  2. Config file (~/.planner/config.yaml or ./config.yaml)
//  3. Default values
//
// Sensitive data (the Gemini API key) is consumed from the environment by the
// Genkit plugin directly and never stored or logged here.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultModelName = "googleai/gemini-2.5-flash"
	DefaultAppName   = "planner_ai"
	DefaultMaxTurns  = 8
	DefaultRateBurst = 60
)

// Config stores application configuration.
type Config struct {
	// HTTP server
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy"` // trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateBurst   int      `mapstructure:"rate_burst"`  // per-IP token bucket burst

	// Orchestrator
	AppName     string `mapstructure:"app_name"`
	ModelName   string `mapstructure:"model_name"`
	MaxTurns    int    `mapstructure:"max_turns"`
	MergePolicy string `mapstructure:"merge_policy"` // "replace" (default) or "merge"

	// Logging
	LogLevel string `mapstructure:"log_level"` // debug | info | warn | error
	LogJSON  bool   `mapstructure:"log_json"`

	// Tracing (optional OTLP export)
	Trace TraceConfig `mapstructure:"trace"`
}

// TraceConfig configures optional OTLP trace export.
type TraceConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"` // collector host:port, OTLP HTTP
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".planner"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("cors_origins", []string{"http://localhost:3000"}) // Next.js dev server
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_burst", DefaultRateBurst)

	v.SetDefault("app_name", DefaultAppName)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("max_turns", DefaultMaxTurns)
	v.SetDefault("merge_policy", "replace")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.endpoint", "localhost:4318")
	v.SetDefault("trace.service_name", "planner")
	v.SetDefault("trace.environment", "dev")
}
