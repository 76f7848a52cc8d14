// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"oiltrading/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing-engine settings
	Pricing PricingConfig `json:"pricing"`

	// Database contains settlement/market-price store settings
	Database DatabaseConfig `json:"database"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-engine settings
type PricingConfig struct {
	// DefaultCurrency is the currency assumed for index observations
	// when a specification carries no currency of its own
	DefaultCurrency string `json:"default_currency"`

	// EnforceAdjustmentCurrency rejects evaluation when a formula
	// adjustment is denominated in a different currency than the index
	EnforceAdjustmentCurrency bool `json:"enforce_adjustment_currency"`
}

// DatabaseConfig contains persistence settings
type DatabaseConfig struct {
	// URL is the postgres connection string
	URL string `json:"url"`

	// MarketPriceTable is the market price observation table
	MarketPriceTable string `json:"market_price_table"`

	// SettlementTable is the settlement table
	SettlementTable string `json:"settlement_table"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			DefaultCurrency:           "USD",
			EnforceAdjustmentCurrency: false,
		},
		Database: DatabaseConfig{
			MarketPriceTable: "market_prices",
			SettlementTable:  "settlements",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
