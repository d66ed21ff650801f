// Package config handles semsql configuration: an optional YAML file
// overridden by SEMSQL_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDialect    = "SEMSQL_DIALECT"
	EnvModels     = "SEMSQL_MODELS"
	EnvLogLevel   = "SEMSQL_LOG_LEVEL"
	EnvListenAddr = "SEMSQL_LISTEN_ADDR"
)

// Defaults.
const (
	DefaultDialect    = "trino"
	DefaultModels     = "./models"
	DefaultLogLevel   = "info"
	DefaultListenAddr = ":8080"
)

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	Dialect    string `yaml:"dialect"`     // dialect used when a command names none
	Models     string `yaml:"models"`      // directory of CUE model files
	LogLevel   string `yaml:"log_level"`   // debug, info, warn, error
	ListenAddr string `yaml:"listen_addr"` // HTTP listen address for serve
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect:    DefaultDialect,
		Models:     DefaultModels,
		LogLevel:   DefaultLogLevel,
		ListenAddr: DefaultListenAddr,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays a YAML document on cfg. Unknown keys are errors; keys the
// document leaves out keep their current value.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from SEMSQL_* variables that are set and non-empty.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDialect); v != "" {
		c.Dialect = v
	}
	if v := os.Getenv(EnvModels); v != "" {
		c.Models = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dialect) == "" {
		return fmt.Errorf("dialect must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q, must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
