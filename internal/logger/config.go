package logger

import (
	"fmt"

	"pollcmd/internal/validator"
)

// Config represents logging configuration
type Config struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size" validate:"gt=0"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
	Level      string `mapstructure:"level" validate:"loglevel"` // debug, info, warn, error
	Console    bool   `mapstructure:"console"`
}

// DefaultConfig returns console-only logging at info level
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Console: true,
	}
}

// SetDefaults fills zero values and returns the config
func (cfg *Config) SetDefaults() *Config {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 28
	}
	// Never build a logger that writes nowhere
	if cfg.File == "" {
		cfg.Console = true
	}
	return cfg
}

// Validate validates logging configuration; call SetDefaults first
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	return nil
}
