/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ssargent/frugy/pkg/fru"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Config represents the frugy configuration
type Config struct {
	DataDir         string  `yaml:"data_dir"`
	EEPROMSize      int     `yaml:"eeprom_size"`
	DefaultEncoding string  `yaml:"default_encoding"`
	Server          Server  `yaml:"server"`
	Logging         Logging `yaml:"logging"`
}

// Server contains REST API settings
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:         "./data",
		EEPROMSize:      0,
		DefaultEncoding: fru.ASCII8Bit.String(),
		Server: Server{
			Bind: "127.0.0.1",
			Port: 9200,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Encoding returns the parsed default string encoding.
func (c *Config) Encoding() (fru.Encoding, error) {
	return fru.ParseEncoding(c.DefaultEncoding)
}

// Validate checks the configuration for values the tools cannot use
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.Wrap(ErrInvalid, "data_dir is empty")
	}
	if c.EEPROMSize < 0 {
		return errors.Wrapf(ErrInvalid, "eeprom_size %d is negative", c.EEPROMSize)
	}
	if _, err := c.Encoding(); err != nil {
		return errors.Wrapf(ErrInvalid, "default_encoding %q", c.DefaultEncoding)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Wrapf(ErrInvalid, "server.port %d out of range", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(ErrInvalid, "logging.level %q", c.Logging.Level)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// 0600: the file may hold the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "failed to generate secure key")
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration to configPath. When
// withAPIKey is set a random API key is generated for the server.
func BootstrapConfig(configPath string, dataDir string, withAPIKey bool) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if withAPIKey {
		key, err := GenerateSecureKey(32) // 256 bits
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate API key")
		}
		config.Server.APIKey = key
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, errors.Wrap(err, "failed to save bootstrap config")
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./frugy.yaml"
	}

	// For Linux/macOS, use ~/.config/frugy/config.yaml
	return filepath.Join(homeDir, ".config", "frugy", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
