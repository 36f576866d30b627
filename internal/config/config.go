// Package config provides configuration management for mswell.
//
// Config file locations (priority order):
//  1. $MSWELL_CONFIG
//  2. ./mswell.yaml
//  3. $XDG_CONFIG_HOME/mswell/config.yaml
//  4. ~/.config/mswell/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mswell/internal/loader"
	"mswell/internal/logging"
)

const (
	defaultDatabasePath = "./mswell.db"
	defaultMode         = "INC"
	// defaultTopVolume is the WELSEGS default wellbore volume
	defaultTopVolume = 1e-5
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes, defaults and validates config bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns defaults for a fresh installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	c.Deck.DefaultMode = strings.ToUpper(c.Deck.DefaultMode)
	if c.Deck.DefaultMode == "" {
		c.Deck.DefaultMode = defaultMode
	}
	if c.Deck.TopVolume == 0 {
		c.Deck.TopVolume = defaultTopVolume
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoggerConfig converts the logging section for logging.New
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.AddSource,
	}
}

// DeckOptions converts the deck section for the deck loader
func (c *Config) DeckOptions() loader.Options {
	return loader.Options{
		DefaultMode: loader.LengthDepthMode(c.Deck.DefaultMode),
		Strict:      c.Deck.Strict,
		TopVolume:   c.Deck.TopVolume,
	}
}

// Summary returns a one-line human-readable config summary
func (c *Config) Summary() string {
	return fmt.Sprintf("database=%s mode=%s strict=%t log=%s/%s",
		c.Database.Path, c.Deck.DefaultMode, c.Deck.Strict, c.Logging.Level, c.Logging.Format)
}
