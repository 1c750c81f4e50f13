package config

import (
	"fmt"
	"time"

	commonCfg "pollcmd/internal/config"
	"pollcmd/internal/server/controller"
	"pollcmd/internal/validator"
)

// Config represents the complete controller configuration
type Config struct {
	Listen  ListenConfig  `mapstructure:"listen"`
	Client  ClientConfig  `mapstructure:"client"`
	API     APIConfig     `mapstructure:"api"`
	Console ConsoleConfig `mapstructure:"console"`
	Log     LogConfig     `mapstructure:"log"`
}

// ListenConfig represents the UDP listener configuration
type ListenConfig struct {
	Host       string        `mapstructure:"host" validate:"required,ip"`
	Port       int           `mapstructure:"port" validate:"min=0,max=65535"`
	PollWait   time.Duration `mapstructure:"poll_wait" validate:"gt=0"`
	BufferSize int           `mapstructure:"buffer_size" validate:"min=64"`
}

// ClientConfig represents defaults applied to newly seen clients
type ClientConfig struct {
	DefaultOS string `mapstructure:"default_os"`
}

// APIConfig represents the HTTP inspection API
type APIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Address      string        `mapstructure:"address" validate:"required,hostport"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" validate:"gt=0"`
}

// ConsoleConfig represents operator console output
type ConsoleConfig struct {
	Color bool `mapstructure:"color"`
}

// LogConfig represents logging configuration
type LogConfig = commonCfg.LogConfig

const (
	DefaultHost         = "::"
	DefaultPort         = 5353
	DefaultPollWait     = 200 * time.Millisecond
	DefaultBufferSize   = 2048
	DefaultAPIAddress   = "127.0.0.1:8080"
	DefaultQueryTimeout = 2 * time.Second
)

func defaults() map[string]any {
	return map[string]any{
		"listen.host":        DefaultHost,
		"listen.port":        DefaultPort,
		"listen.poll_wait":   DefaultPollWait,
		"listen.buffer_size": DefaultBufferSize,
		"client.default_os":  controller.DefaultClientOS,
		"api.enabled":        false,
		"api.address":        DefaultAPIAddress,
		"api.read_timeout":   10 * time.Second,
		"api.write_timeout":  10 * time.Second,
		"api.query_timeout":  DefaultQueryTimeout,
		"console.color":      true,
		"log.level":          "info",
		"log.file":           "",
		"log.max_size":       100,
		"log.max_backups":    3,
		"log.max_age":        28,
		"log.compress":       false,
		"log.console":        true,
	}
}

// LoadConfig loads the controller configuration from file, environment and defaults
func LoadConfig(path string) (*Config, error) {
	v, err := commonCfg.Read(path, "server", defaults())
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

func validateConfig(config *Config) error {
	// Log defaults fill fields left empty in the file before the tags are checked
	config.Log.SetDefaults()
	return validator.New().Struct(config)
}
