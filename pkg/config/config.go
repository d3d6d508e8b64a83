/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SinkSQL    = "sql"
	SinkPebble = "pebble"

	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config represents the dbcport configuration
type Config struct {
	Descriptors Descriptors `yaml:"descriptors"`
	SchemaFile  string      `yaml:"schema_file"`
	DBC         DBC         `yaml:"dbc"`
	Sink        Sink        `yaml:"sink"`
	Metrics     Metrics     `yaml:"metrics"`
	Logging     Logging     `yaml:"logging"`
}

// Descriptors locates the field descriptor sources
type Descriptors struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

// DBC controls discovery and decoding of the binary files
type DBC struct {
	Dir        string `yaml:"dir"`
	Magic      string `yaml:"magic"`
	Limit      int    `yaml:"limit"`
	AllLocales bool   `yaml:"all_locales"`
	Workers    int    `yaml:"workers"`
}

// Sink selects where decoded records are written
type Sink struct {
	Kind         string `yaml:"kind"`
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	TablePrefix  string `yaml:"table_prefix"`
	BatchSize    int    `yaml:"batch_size"`
	MaxRetries   int    `yaml:"max_retries"`
	DropExisting bool   `yaml:"drop_existing"`
	PebbleDir    string `yaml:"pebble_dir"`
}

// Metrics contains metrics export configuration
type Metrics struct {
	// Textfile is the node exporter textfile path; empty disables export.
	Textfile string `yaml:"textfile"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Descriptors: Descriptors{
			Dir:        "./descriptors",
			Extensions: []string{".ts"},
		},
		SchemaFile: "./schemas.json",
		DBC: DBC{
			Dir:     "./dbc",
			Magic:   "WDBC",
			Workers: 4,
		},
		Sink: Sink{
			Kind:       SinkSQL,
			Driver:     DriverSQLite,
			DSN:        "./dbc.sqlite",
			BatchSize:  500,
			MaxRetries: 5,
			PebbleDir:  "./archive",
		},
		Logging: Logging{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600); the DSN may carry credentials
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration whose paths live under
// baseDir. An empty baseDir keeps the relative defaults.
func BootstrapConfig(configPath string, baseDir string) (*Config, error) {
	config := DefaultConfig()
	if baseDir != "" {
		config.Descriptors.Dir = filepath.Join(baseDir, "descriptors")
		config.SchemaFile = filepath.Join(baseDir, "schemas.json")
		config.DBC.Dir = filepath.Join(baseDir, "dbc")
		config.Sink.DSN = filepath.Join(baseDir, "dbc.sqlite")
		config.Sink.PebbleDir = filepath.Join(baseDir, "archive")
	}

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./dbcport.yaml"
	}

	// For Linux/macOS, use ~/.config/dbcport/config.yaml
	configDir := filepath.Join(homeDir, ".config", "dbcport")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.SchemaFile == "" {
		return fmt.Errorf("schema_file is required")
	}
	if len(c.DBC.Magic) != 4 {
		return fmt.Errorf("dbc.magic must be 4 bytes, got %q", c.DBC.Magic)
	}
	if c.DBC.Limit < 0 {
		return fmt.Errorf("dbc.limit must not be negative")
	}
	if c.DBC.Workers < 1 {
		return fmt.Errorf("dbc.workers must be at least 1")
	}

	switch c.Sink.Kind {
	case SinkSQL:
		if c.Sink.Driver != DriverSQLite && c.Sink.Driver != DriverMySQL {
			return fmt.Errorf("unsupported sink.driver %q", c.Sink.Driver)
		}
		if c.Sink.DSN == "" {
			return fmt.Errorf("sink.dsn is required for the sql sink")
		}
		if c.Sink.BatchSize < 1 {
			return fmt.Errorf("sink.batch_size must be at least 1")
		}
		if c.Sink.MaxRetries < 0 {
			return fmt.Errorf("sink.max_retries must not be negative")
		}
	case SinkPebble:
		if c.Sink.PebbleDir == "" {
			return fmt.Errorf("sink.pebble_dir is required for the pebble sink")
		}
	default:
		return fmt.Errorf("unsupported sink.kind %q", c.Sink.Kind)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("unsupported logging.format %q", c.Logging.Format)
	}
	return nil
}
