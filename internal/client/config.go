package client

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete client configuration
type Config struct {
	Server ServerConfig `hcl:"server,block"`
	Player PlayerConfig `hcl:"player,block"`
	Table  TableConfig  `hcl:"table,block"`
}

// ServerConfig contains server connection settings
type ServerConfig struct {
	URL               string `hcl:"url"`
	ConnectTimeout    int    `hcl:"connect_timeout,optional"` // seconds
	ReconnectAttempts int    `hcl:"reconnect_attempts,optional"`
	ReconnectDelay    int    `hcl:"reconnect_delay,optional"` // seconds
}

// PlayerConfig contains player identity settings
type PlayerConfig struct {
	Name string `hcl:"name"`
}

// TableConfig contains table behaviour settings
type TableConfig struct {
	AutoDefaultAction bool   `hcl:"auto_default_action,optional"`
	HideStartedGames  bool   `hcl:"hide_started_games,optional"`
	HidePrivateGames  bool   `hcl:"hide_private_games,optional"`
	LogLevel          string `hcl:"log_level,optional"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "http://localhost:8080",
			ConnectTimeout:    10,
			ReconnectAttempts: 3,
			ReconnectDelay:    5,
		},
		Player: PlayerConfig{
			Name: "",
		},
		Table: TableConfig{
			AutoDefaultAction: true,
			LogLevel:          "warn",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()

	if config.Server.URL == "" {
		config.Server.URL = defaults.Server.URL
	}
	if config.Server.ConnectTimeout == 0 {
		config.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if config.Server.ReconnectAttempts == 0 {
		config.Server.ReconnectAttempts = defaults.Server.ReconnectAttempts
	}
	if config.Server.ReconnectDelay == 0 {
		config.Server.ReconnectDelay = defaults.Server.ReconnectDelay
	}
	if config.Table.LogLevel == "" {
		config.Table.LogLevel = defaults.Table.LogLevel
	}

	return &config, nil
}

// FoyerFilters returns the view predicates enabled by configuration
func (c *Config) FoyerFilters() []GameFilter {
	var filters []GameFilter
	if c.Table.HideStartedGames {
		filters = append(filters, HideStarted)
	}
	if c.Table.HidePrivateGames {
		filters = append(filters, HidePrivate)
	}
	return filters
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}

	if c.Player.Name == "" {
		return fmt.Errorf("player name is required")
	}

	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if c.Server.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}

	if c.Server.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Table.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Table.LogLevel)
	}

	return nil
}
