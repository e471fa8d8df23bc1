package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// Sentinel errors for configuration validation, checked with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidAddr indicates the listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidModelName indicates the model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxTurns indicates the max turns value is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")

	// ErrInvalidMergePolicy indicates an unknown merge policy string.
	ErrInvalidMergePolicy = errors.New("invalid merge policy")

	// ErrInvalidRateBurst indicates the rate burst is out of range.
	ErrInvalidRateBurst = errors.New("invalid rate burst")

	// ErrInvalidLogLevel indicates an unknown log level string.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// MaxTurnsLimit is the absolute upper bound on the agentic loop.
const MaxTurnsLimit = 32

// Validate checks all configuration values (fail-fast at startup).
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddr, c.Addr)
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidModelName)
	}

	if c.MaxTurns < 1 || c.MaxTurns > MaxTurnsLimit {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidMaxTurns, c.MaxTurns, MaxTurnsLimit)
	}

	switch c.MergePolicy {
	case "", "replace", "merge":
	default:
		return fmt.Errorf("%w: %q (want replace or merge)", ErrInvalidMergePolicy, c.MergePolicy)
	}

	if c.RateBurst < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRateBurst, c.RateBurst)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured log level string to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
}
