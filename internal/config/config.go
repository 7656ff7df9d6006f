// Package config loads the vireo.json tool configuration used by the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vireo.json"

	// DefaultInspectorAddr is the default inspector bind address.
	DefaultInspectorAddr = "localhost:6300"

	// DefaultMetricsAddr is the default metrics bind address.
	DefaultMetricsAddr = "localhost:6301"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "vireo"
)

// ErrNotFound is returned when no vireo.json exists at the given path.
var ErrNotFound = errors.New("config: vireo.json not found")

// Config represents the complete vireo.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Inspector contains inspector server configuration.
	Inspector InspectorConfig `json:"inspector,omitempty"`

	// Metrics contains Prometheus exposition configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Bench contains benchmark profile configuration.
	Bench BenchConfig `json:"bench,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Enabled controls whether the inspector is served.
	Enabled bool `json:"enabled,omitempty"`

	// Addr is the address the inspector binds to.
	Addr string `json:"addr,omitempty"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	Enabled bool `json:"enabled,omitempty"`

	// Addr is the address the /metrics endpoint binds to.
	Addr string `json:"addr,omitempty"`

	// Namespace is the Prometheus metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// BenchConfig contains benchmark profile settings.
type BenchConfig struct {
	// Refs is the number of refs per benchmark iteration.
	Refs int `json:"refs,omitempty"`

	// Effects is the number of effects per benchmark iteration.
	Effects int `json:"effects,omitempty"`

	// Writes is the number of writes per benchmark iteration.
	Writes int `json:"writes,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Inspector: InspectorConfig{
			Enabled: true,
			Addr:    DefaultInspectorAddr,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Addr:      DefaultMetricsAddr,
			Namespace: DefaultMetricsNamespace,
		},
		Bench: BenchConfig{
			Refs:    1000,
			Effects: 1000,
			Writes:  10000,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vireo.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config: no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Bench.Refs <= 0 {
		c.Bench.Refs = 1000
	}
	if c.Bench.Effects <= 0 {
		c.Bench.Effects = 1000
	}
	if c.Bench.Writes <= 0 {
		c.Bench.Writes = 10000
	}
}
