package config

import (
	"fmt"
	"time"

	commonCfg "pollcmd/internal/config"
	"pollcmd/internal/validator"
)

// Config represents agent configuration
type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Server    ServerConfig    `mapstructure:"server"`
	Transport TransportConfig `mapstructure:"transport"`
	Timer     TimerConfig     `mapstructure:"timer"`
	Executor  ExecutorConfig  `mapstructure:"executor"`
	Log       LogConfig       `mapstructure:"log"`
}

// AgentConfig represents agent identity configuration
type AgentConfig struct {
	// ID overrides the host fingerprint when set
	ID string `mapstructure:"id"`
}

// ServerConfig represents the controller the agent polls
type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required,hostport"`
}

// TransportConfig represents UDP transport configuration
type TransportConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	BufferSize int           `mapstructure:"buffer_size" validate:"min=64"`
}

// TimerConfig represents the poll timer
type TimerConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// ExecutorConfig represents local command execution
type ExecutorConfig struct {
	// Timeout bounds each command; zero means no limit
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// LogConfig represents logging configuration
type LogConfig = commonCfg.LogConfig

const (
	DefaultServerAddress = "[::1]:5353"
	DefaultTimeout       = time.Second
	DefaultBufferSize    = 2048
	DefaultTimerInterval = 1000 * time.Millisecond
)

func defaults() map[string]any {
	return map[string]any{
		"agent.id":              "",
		"server.address":        DefaultServerAddress,
		"transport.timeout":     DefaultTimeout,
		"transport.buffer_size": DefaultBufferSize,
		"timer.interval":        DefaultTimerInterval,
		"executor.timeout":      time.Duration(0),
		"log.level":             "info",
		"log.file":              "",
		"log.max_size":          100,
		"log.max_backups":       3,
		"log.max_age":           28,
		"log.compress":          false,
		"log.console":           true,
	}
}

// LoadConfig loads the agent configuration from file, environment and defaults
func LoadConfig(path string) (*Config, error) {
	v, err := commonCfg.Read(path, "agent", defaults())
	if err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Log defaults fill fields left empty in the file before the tags are checked
	config.Log.SetDefaults()
	return validator.New().Struct(config)
}
