package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Venue struct {
		RestURL        string `yaml:"rest_url"`
		StreamURL      string `yaml:"stream_url"`
		RecvWindowMs   int64  `yaml:"recv_window_ms"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"venue"`
	Console struct {
		DefaultSymbol string `yaml:"default_symbol"`
		DefaultLimit  int    `yaml:"default_limit"`
		TestOrders    bool   `yaml:"test_orders"`
	} `yaml:"console"`
	Session struct {
		StopTimeoutSeconds int `yaml:"stop_timeout_seconds"`
		CacheDepth         int `yaml:"cache_depth"`
	} `yaml:"session"`
}

func (c *Config) Validate() error {
	if c.Venue.RestURL == "" {
		return fmt.Errorf("venue.rest_url cannot be empty")
	}
	if c.Venue.StreamURL == "" {
		return fmt.Errorf("venue.stream_url cannot be empty")
	}
	if c.Console.DefaultSymbol == "" {
		return fmt.Errorf("console.default_symbol cannot be empty")
	}
	if c.Console.DefaultLimit <= 0 {
		return fmt.Errorf("console.default_limit must be positive, got %d", c.Console.DefaultLimit)
	}
	if c.Session.StopTimeoutSeconds <= 0 {
		return fmt.Errorf("session.stop_timeout_seconds must be positive, got %d", c.Session.StopTimeoutSeconds)
	}
	if c.Session.CacheDepth <= 0 {
		return fmt.Errorf("session.cache_depth must be positive, got %d", c.Session.CacheDepth)
	}
	return nil
}

// applyDefaults fills in zero-valued fields after unmarshal.
func (c *Config) applyDefaults() {
	if c.Venue.RestURL == "" {
		c.Venue.RestURL = "https://api.binance.com"
	}
	if c.Venue.StreamURL == "" {
		c.Venue.StreamURL = "wss://stream.binance.com:9443"
	}
	if c.Venue.RecvWindowMs == 0 {
		c.Venue.RecvWindowMs = 5000
	}
	if c.Venue.TimeoutSeconds == 0 {
		c.Venue.TimeoutSeconds = 30
	}
	if c.Console.DefaultSymbol == "" {
		c.Console.DefaultSymbol = "BTCUSDT"
	}
	if c.Console.DefaultLimit == 0 {
		c.Console.DefaultLimit = 10
	}
	if c.Session.StopTimeoutSeconds == 0 {
		c.Session.StopTimeoutSeconds = 10
	}
	if c.Session.CacheDepth == 0 {
		c.Session.CacheDepth = 200
	}
}

// LoadConfig reads the yaml config at path. A missing file is not an error:
// the console runs fine on defaults.
func LoadConfig(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
