package config

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" validate:"gte=1"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Deck     DeckConfig     `yaml:"deck"`
}

// DatabaseConfig locates the restart checkpoint store
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LoggingConfig mirrors logging.Config
type LoggingConfig struct {
	Level     string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format    string `yaml:"format" validate:"omitempty,oneof=text json"`
	AddSource bool   `yaml:"add_source"`
}

// DeckConfig controls how segment decks are read
type DeckConfig struct {
	// DefaultMode applies to decks that do not state INC or ABS
	DefaultMode string `yaml:"default_length_depth_mode" validate:"oneof=INC ABS"`
	// Strict rejects unknown keys in deck files
	Strict bool `yaml:"strict"`
	// TopVolume is used when a deck omits the wellbore volume
	TopVolume float64 `yaml:"top_volume" validate:"gt=0"`
}
