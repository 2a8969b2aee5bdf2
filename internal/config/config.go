// Package config loads delphi-cli settings: built-in defaults, then an
// optional YAML file, then DELPHI_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// TransportType is the MCP transport served by `delphi-cli serve`.
type TransportType string

const (
	// TransportStdio speaks MCP over stdin/stdout.
	TransportStdio TransportType = "stdio"
	// TransportHTTP serves streamable HTTP on HTTPPort.
	TransportHTTP TransportType = "streamable-http"
)

// Config holds every tunable. Zero Port and empty Process mean "discover
// any bridge".
type Config struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Process        string        `yaml:"process"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	ClickSettle time.Duration `yaml:"click_settle"`
	FocusSettle time.Duration `yaml:"focus_settle"`
	KeyInterval time.Duration `yaml:"key_interval"`
	EdgeInset   int           `yaml:"edge_inset"`

	LogLevel  string        `yaml:"log_level"`
	Transport TransportType `yaml:"transport"`
	HTTPPort  int           `yaml:"http_port"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:           "127.0.0.1",
		ProbeTimeout:   500 * time.Millisecond,
		RequestTimeout: 3 * time.Second,
		ClickSettle:    50 * time.Millisecond,
		FocusSettle:    150 * time.Millisecond,
		KeyInterval:    20 * time.Millisecond,
		EdgeInset:      10,
		LogLevel:       "info",
		Transport:      TransportStdio,
		HTTPPort:       8080,
		CacheTTL:       2 * time.Second,
	}
}

// Load builds the configuration. path may be empty, in which case
// DELPHI_CONFIG names the file, if set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("DELPHI_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	c.Host = getEnv("DELPHI_BRIDGE_HOST", c.Host)
	c.Process = getEnv("DELPHI_PROCESS", c.Process)
	c.LogLevel = getEnv("DELPHI_LOG_LEVEL", c.LogLevel)
	c.Transport = TransportType(getEnv("DELPHI_MCP_TRANSPORT", string(c.Transport)))

	if c.Port, err = getEnvAsInt("DELPHI_BRIDGE_PORT", c.Port); err != nil {
		return err
	}
	if c.HTTPPort, err = getEnvAsInt("DELPHI_MCP_PORT", c.HTTPPort); err != nil {
		return err
	}
	if c.ProbeTimeout, err = getEnvAsDuration("DELPHI_PROBE_TIMEOUT", c.ProbeTimeout); err != nil {
		return err
	}
	if c.RequestTimeout, err = getEnvAsDuration("DELPHI_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = getEnvAsDuration("DELPHI_CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the rest of the program cannot use.
func (c *Config) Validate() error {
	if c.Transport != TransportStdio && c.Transport != TransportHTTP {
		return fmt.Errorf("invalid transport type: %s (must be 'stdio' or 'streamable-http')", c.Transport)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid bridge port: %d", c.Port)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid MCP HTTP port: %d", c.HTTPPort)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ClickSettle < 0 || c.FocusSettle < 0 || c.KeyInterval < 0 || c.CacheTTL < 0 {
		return errors.New("pauses and cache TTL cannot be negative")
	}
	if c.EdgeInset < 0 {
		return fmt.Errorf("edge inset cannot be negative, got %d", c.EdgeInset)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q (expected integer)", key, value)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q (expected duration, e.g., '500ms', '3s')", key, value)
	}
	return d, nil
}
