package config

import (
	"fmt"
	"os"

	"mt5-gateway/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Defaults applied by NewConfig when the YAML omits a value.
const (
	DefaultCacheTTLSeconds       = 300
	DefaultPollIntervalMs        = 500
	DefaultBroadcastSeconds      = 5
	DefaultHealthSeconds         = 30
	DefaultMaxCandles            = 1000
	DefaultConnectAttempts       = 3
	DefaultConnectRetryDelaySecs = 5
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	if c.Terminal.PollIntervalMs <= 0 {
		c.Terminal.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.Terminal.ConnectAttempts <= 0 {
		c.Terminal.ConnectAttempts = DefaultConnectAttempts
	}
	if c.Terminal.ConnectRetryDelay <= 0 {
		c.Terminal.ConnectRetryDelay = DefaultConnectRetryDelaySecs
	}
	if c.Broadcast.IntervalSeconds <= 0 {
		c.Broadcast.IntervalSeconds = DefaultBroadcastSeconds
	}
	if c.Broadcast.HealthIntervalSeconds <= 0 {
		c.Broadcast.HealthIntervalSeconds = DefaultHealthSeconds
	}
	if c.Market.MaxCandles <= 0 {
		c.Market.MaxCandles = DefaultMaxCandles
	}
	if c.Market.DefaultTimeframe == "" {
		c.Market.DefaultTimeframe = "M5"
	}
	if len(c.Market.SupportedTimeframes) == 0 {
		c.Market.SupportedTimeframes = []string{"M1", "M5", "M15", "M30", "H1", "H4", "D1", "W1", "MN1"}
	}
	if c.Market.CalendarMIC == "" {
		c.Market.CalendarMIC = "xnys"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Terminal configuration
	if c.Terminal.Endpoint == "" {
		return fmt.Errorf("terminal bridge endpoint cannot be empty")
	}
	if c.Terminal.RequestTimeout <= 0 {
		return fmt.Errorf("terminal request timeout must be greater than 0")
	}
	if c.Terminal.MaxRetries < 0 {
		return fmt.Errorf("terminal max retries cannot be negative")
	}

	// Validate Market configuration
	supported := false
	for _, tf := range c.Market.SupportedTimeframes {
		if tf == "" {
			return fmt.Errorf("supported timeframes cannot contain an empty entry")
		}
		if tf == c.Market.DefaultTimeframe {
			supported = true
		}
	}
	if !supported {
		return fmt.Errorf("default timeframe '%s' is not in supported timeframes", c.Market.DefaultTimeframe)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
