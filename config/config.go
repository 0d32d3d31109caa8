package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/risk"
)

// Config is the complete tradejournal configuration.
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store"`
	Prices  PricesConfig  `json:"prices" yaml:"prices"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
}

// StoreConfig selects where positions and journal entries live.
type StoreConfig struct {
	Backend string `json:"backend" yaml:"backend"` // "memory", "sqlite" or "dynamodb"
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Codec   string `json:"codec" yaml:"codec"` // "json" or "msgpack"
	Table   string `json:"table,omitempty" yaml:"table,omitempty"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
}

type PricesConfig struct {
	Alpaca AlpacaConfig `json:"alpaca" yaml:"alpaca"`
}

type AlpacaConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	Feed      string `json:"feed" yaml:"feed"` // "iex" or "sip"
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// TradingConfig tunes the trade service.
type TradingConfig struct {
	// CompensationRetries bounds how often a rollback step retries after a
	// version conflict before giving up.
	CompensationRetries int         `json:"compensation_retries" yaml:"compensation_retries"`
	Risk                risk.Policy `json:"risk" yaml:"risk"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is not empty, applies .env and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML or JSON based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv() {
	c.Store.Backend = getEnv("TRADEJOURNAL_STORE", c.Store.Backend)
	c.Store.Path = getEnv("TRADEJOURNAL_DB", c.Store.Path)
	c.Store.Codec = getEnv("TRADEJOURNAL_CODEC", c.Store.Codec)
	c.Store.Table = getEnv("DYNAMODB_TABLE", c.Store.Table)
	c.Store.Region = getEnv("AWS_REGION", c.Store.Region)

	c.Prices.Alpaca.APIKey = getEnv("ALPACA_API_KEY", c.Prices.Alpaca.APIKey)
	c.Prices.Alpaca.APISecret = getEnv("ALPACA_SECRET_KEY", c.Prices.Alpaca.APISecret)
	c.Prices.Alpaca.Enabled = getEnvAsBool("ALPACA_ENABLED", c.Prices.Alpaca.Enabled)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvAsBool("LOG_PRETTY", c.Log.Pretty)

	c.Server.Addr = getEnv("TRADEJOURNAL_ADDR", c.Server.Addr)
	c.Trading.CompensationRetries = getEnvAsInt("TRADEJOURNAL_COMPENSATION_RETRIES", c.Trading.CompensationRetries)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for sqlite backend")
		}
	case "dynamodb":
		if c.Store.Table == "" {
			return fmt.Errorf("store.table required for dynamodb backend")
		}
	default:
		return fmt.Errorf("store.backend must be 'memory', 'sqlite' or 'dynamodb'")
	}
	if c.Store.Codec != "json" && c.Store.Codec != "msgpack" {
		return fmt.Errorf("store.codec must be 'json' or 'msgpack'")
	}
	if c.Prices.Alpaca.Enabled {
		if c.Prices.Alpaca.APIKey == "" || c.Prices.Alpaca.APISecret == "" {
			return fmt.Errorf("prices.alpaca api_key and api_secret required when enabled")
		}
		if c.Prices.Alpaca.Feed != "iex" && c.Prices.Alpaca.Feed != "sip" {
			return fmt.Errorf("prices.alpaca.feed must be 'iex' or 'sip'")
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}
	if c.Trading.CompensationRetries < 0 {
		return fmt.Errorf("trading.compensation_retries cannot be negative")
	}
	if r := c.Trading.Risk.MaxRiskPct; r < 0 || r > 1 {
		return fmt.Errorf("trading.risk.max_risk_pct must be between 0 and 1")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "./tradejournal.db",
			Codec:   "json",
			Table:   "tradejournal",
			Region:  "us-east-1",
		},
		Prices: PricesConfig{
			Alpaca: AlpacaConfig{Feed: "iex"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Trading: TradingConfig{
			CompensationRetries: 3,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
