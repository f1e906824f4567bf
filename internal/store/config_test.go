package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected a missing file to load defaults, got %v", err)
	}
	if cfg.Venue.RestURL != "https://api.binance.com" {
		t.Errorf("Expected default rest url, got %s", cfg.Venue.RestURL)
	}
	if cfg.Venue.StreamURL != "wss://stream.binance.com:9443" {
		t.Errorf("Expected default stream url, got %s", cfg.Venue.StreamURL)
	}
	if cfg.Console.DefaultSymbol != "BTCUSDT" || cfg.Console.DefaultLimit != 10 {
		t.Errorf("Expected default console settings, got %+v", cfg.Console)
	}
	if cfg.Session.StopTimeoutSeconds != 10 || cfg.Session.CacheDepth != 200 {
		t.Errorf("Expected default session settings, got %+v", cfg.Session)
	}
	if cfg.Console.TestOrders {
		t.Error("Expected test orders off by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
venue:
  rest_url: "https://testnet.binance.vision"
  recv_window_ms: 10000
console:
  default_symbol: "ETHUSDT"
  test_orders: true
session:
  cache_depth: 50
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Venue.RestURL != "https://testnet.binance.vision" {
		t.Errorf("Expected overridden rest url, got %s", cfg.Venue.RestURL)
	}
	if cfg.Venue.RecvWindowMs != 10000 {
		t.Errorf("Expected recv window 10000, got %d", cfg.Venue.RecvWindowMs)
	}
	if cfg.Console.DefaultSymbol != "ETHUSDT" || !cfg.Console.TestOrders {
		t.Errorf("Expected console overrides, got %+v", cfg.Console)
	}
	if cfg.Session.CacheDepth != 50 {
		t.Errorf("Expected cache depth 50, got %d", cfg.Session.CacheDepth)
	}
	// Unset fields still get defaults.
	if cfg.Venue.StreamURL != "wss://stream.binance.com:9443" {
		t.Errorf("Expected default stream url, got %s", cfg.Venue.StreamURL)
	}
	if cfg.Console.DefaultLimit != 10 {
		t.Errorf("Expected default limit, got %d", cfg.Console.DefaultLimit)
	}
}

func TestLoadConfigRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("venue: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected a parse error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Console.DefaultLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected a negative default limit to fail validation")
	}

	cfg = &Config{}
	cfg.applyDefaults()
	cfg.Venue.RestURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected an empty rest url to fail validation")
	}
}
