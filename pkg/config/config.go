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

	"github.com/ssargent/boxprofile/pkg/codec"
)

// Config represents the boxprofile settings file
type Config struct {
	Profile     Profile     `yaml:"profile"`
	Output      Output      `yaml:"output"`
	Compression Compression `yaml:"compression"`
	Logging     Logging     `yaml:"logging"`
}

// Profile holds defaults applied when a flag is not given
type Profile struct {
	Type               string `yaml:"type"`
	AutoUpdate         bool   `yaml:"auto_update"`
	AutoUpdateInterval int32  `yaml:"auto_update_interval"`
}

// Output controls where encoded profiles are written
type Output struct {
	Extension string `yaml:"extension"`
}

// Compression contains gzip settings for the message payload
type Compression struct {
	Level int `yaml:"level"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Profile: Profile{
			Type: codec.ProfileTypeLocal.String(),
		},
		Output: Output{
			Extension: ".bpf",
		},
		Compression: Compression{
			Level: codec.BestCompression,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that every setting has a usable value
func (c *Config) Validate() error {
	if _, err := codec.ParseProfileType(c.Profile.Type); err != nil {
		return fmt.Errorf("profile.type: %w", err)
	}
	if c.Profile.AutoUpdateInterval < 0 {
		return fmt.Errorf("profile.auto_update_interval must not be negative: %d", c.Profile.AutoUpdateInterval)
	}
	if !strings.HasPrefix(c.Output.Extension, ".") {
		return fmt.Errorf("output.extension must start with a dot: %q", c.Output.Extension)
	}
	if c.Compression.Level < codec.HuffmanOnly || c.Compression.Level > codec.BestCompression {
		return fmt.Errorf("compression.level must be between %d and %d: %d",
			codec.HuffmanOnly, codec.BestCompression, c.Compression.Level)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", c.Logging.Format)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// LoadOrDefault loads the file at configPath, or returns the defaults when
// the file does not exist
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" || !ConfigExists(configPath) {
		return DefaultConfig(), nil
	}
	return LoadConfig(configPath)
}

// SaveConfig saves the configuration to the specified path
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

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes the default configuration to configPath
func BootstrapConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./boxprofile.yaml"
	}

	// For Linux/macOS, use ~/.config/boxprofile/config.yaml
	configDir := filepath.Join(homeDir, ".config", "boxprofile")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
