// Package config loads the portrack configuration file and its
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Files     FilesConfig     `mapstructure:"files"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

// PortfolioConfig tunes the valuation run.
type PortfolioConfig struct {
	Benchmark   string  `mapstructure:"benchmark"`
	Currency    string  `mapstructure:"currency"`
	RiskFree    float64 `mapstructure:"risk_free"`
	TradingDays int     `mapstructure:"trading_days"`
	SellPolicy  string  `mapstructure:"sell_policy"` // "reject" or "skip"
	StartDate   string  `mapstructure:"start_date"`
}

// FilesConfig names the data files the tools read and write.
type FilesConfig struct {
	Transactions string `mapstructure:"transactions"` // CSV ledger
	Prices       string `mapstructure:"prices"`       // jsonl quote cache
	Database     string `mapstructure:"database"`     // sqlite report store
	OutputDir    string `mapstructure:"output_dir"`   // CSV reports
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
	Path  string `mapstructure:"path"`
}

// GeminiConfig holds the analyst agent credentials.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DefaultDir returns the default configuration directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "portrack")
}

// Load reads config.toml from dir (default directory when empty) and
// applies PORTRACK_* environment overrides. A missing file yields the
// defaults.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.SetDefault("portfolio.benchmark", "SPY")
	v.SetDefault("portfolio.currency", "USD")
	v.SetDefault("portfolio.risk_free", 0.02)
	v.SetDefault("portfolio.trading_days", 252)
	v.SetDefault("portfolio.sell_policy", "reject")
	v.SetDefault("files.transactions", "transactions.csv")
	v.SetDefault("files.prices", "prices.jsonl")
	v.SetDefault("files.database", filepath.Join(dir, "portrack.db"))
	v.SetDefault("files.output_dir", "output")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetEnvPrefix("PORTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Portfolio.Benchmark == "" {
		return fmt.Errorf("portfolio.benchmark must not be empty")
	}
	if c.Portfolio.TradingDays <= 0 {
		return fmt.Errorf("portfolio.trading_days must be positive, got %d", c.Portfolio.TradingDays)
	}
	switch c.Portfolio.SellPolicy {
	case "reject", "skip":
	default:
		return fmt.Errorf("portfolio.sell_policy must be %q or %q, got %q", "reject", "skip", c.Portfolio.SellPolicy)
	}
	return nil
}
