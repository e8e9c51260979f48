package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete papertrader configuration.
type Config struct {
	Account     AccountConfig     `json:"account" yaml:"account"`
	Policy      PolicyConfig      `json:"policy" yaml:"policy"`
	Assets      []AssetConfig     `json:"assets" yaml:"assets"`
	Schedule    ScheduleConfig    `json:"schedule" yaml:"schedule"`
	PriceSource PriceSourceConfig `json:"price_source" yaml:"price_source"`
	Journal     JournalConfig     `json:"journal" yaml:"journal"`
	Risk        RiskConfig        `json:"risk" yaml:"risk"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

// AccountConfig sets up the paper ledger.
type AccountConfig struct {
	Currency    string  `json:"currency" yaml:"currency"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

// PolicyConfig holds the exit thresholds relative to the average entry price.
type PolicyConfig struct {
	TakeProfitRatio float64 `json:"take_profit_ratio" yaml:"take_profit_ratio"`
	StopLossRatio   float64 `json:"stop_loss_ratio" yaml:"stop_loss_ratio"`
}

// AssetConfig is one tracked symbol.
type AssetConfig struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	BuyAmount float64 `json:"buy_amount" yaml:"buy_amount"`
	SourceID  string  `json:"source_id,omitempty" yaml:"source_id,omitempty"` // e.g. CoinGecko coin id
}

// ScheduleConfig controls the vigil loop.
type ScheduleConfig struct {
	Interval  string `json:"interval" yaml:"interval"` // e.g. "1m"
	Stagger   string `json:"stagger" yaml:"stagger"`   // pause between assets
	MaxCycles int    `json:"max_cycles,omitempty" yaml:"max_cycles,omitempty"`
}

func (s ScheduleConfig) IntervalDuration() (time.Duration, error) { return parseDuration(s.Interval) }
func (s ScheduleConfig) StaggerDuration() (time.Duration, error)  { return parseDuration(s.Stagger) }

// PriceSourceConfig selects where prices come from.
type PriceSourceConfig struct {
	Type    string             `json:"type" yaml:"type"` // coingecko, yahoo or static
	BaseURL string             `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout string             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	APIKey  string             `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Prices  map[string]float64 `json:"prices,omitempty" yaml:"prices,omitempty"` // static only
}

func (p PriceSourceConfig) TimeoutDuration() (time.Duration, error) { return parseDuration(p.Timeout) }

// JournalConfig selects the audit sink. Mirrors receive a copy of every
// record in addition to the primary sink.
type JournalConfig struct {
	Type       string          `json:"type" yaml:"type"` // text, csv or sqlite
	Path       string          `json:"path" yaml:"path"`
	EquityPath string          `json:"equity_path,omitempty" yaml:"equity_path,omitempty"` // csv only
	Mirrors    []JournalConfig `json:"mirrors,omitempty" yaml:"mirrors,omitempty"`
}

// RiskConfig configures the buy gate. Zero values disable each check.
type RiskConfig struct {
	MaxPositionUSD    float64  `json:"max_position_usd,omitempty" yaml:"max_position_usd,omitempty"`
	MinCashReserveUSD float64  `json:"min_cash_reserve_usd,omitempty" yaml:"min_cash_reserve_usd,omitempty"`
	MaxVolatility     float64  `json:"max_volatility,omitempty" yaml:"max_volatility,omitempty"`
	VolatilityWindow  int      `json:"volatility_window,omitempty" yaml:"volatility_window,omitempty"`
	Blocklist         []string `json:"blocklist,omitempty" yaml:"blocklist,omitempty"`
}

// Enabled reports whether any risk check is configured.
func (r RiskConfig) Enabled() bool {
	return r.MaxPositionUSD > 0 || r.MinCashReserveUSD > 0 || r.MaxVolatility > 0 || len(r.Blocklist) > 0
}

type LogConfig struct {
	Level   string `json:"level" yaml:"level"`
	Format  string `json:"format" yaml:"format"`
	Tracing bool   `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// LoadFromFile loads configuration from a YAML or JSON file, applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is set and otherwise starts from Default. Values
// from .env files and the environment are applied on top either way.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if path != "" {
		return LoadFromFile(path)
	}

	cfg := Default()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from PAPERTRADER_INITIAL_CASH,
// PAPERTRADER_INTERVAL, PAPERTRADER_JOURNAL_PATH, COINGECKO_API_KEY,
// LOG_LEVEL and LOG_FORMAT.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PAPERTRADER_INITIAL_CASH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PAPERTRADER_INITIAL_CASH: %w", err)
		}
		c.Account.InitialCash = f
	}
	if v := getenv("PAPERTRADER_INTERVAL"); v != "" {
		c.Schedule.Interval = v
	}
	if v := getenv("PAPERTRADER_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.PriceSource.APIKey = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.InitialCash < 0 {
		return fmt.Errorf("account.initial_cash must not be negative")
	}
	if c.Policy.TakeProfitRatio <= 1 {
		return fmt.Errorf("policy.take_profit_ratio must be greater than 1")
	}
	if c.Policy.StopLossRatio <= 0 || c.Policy.StopLossRatio >= 1 {
		return fmt.Errorf("policy.stop_loss_ratio must be between 0 and 1")
	}

	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	seen := map[string]bool{}
	for i, a := range c.Assets {
		sym := strings.ToUpper(strings.TrimSpace(a.Symbol))
		if sym == "" {
			return fmt.Errorf("assets[%d].symbol is required", i)
		}
		if seen[sym] {
			return fmt.Errorf("duplicate asset %s", sym)
		}
		seen[sym] = true
		if a.BuyAmount < 0 {
			return fmt.Errorf("assets[%d].buy_amount must not be negative", i)
		}
	}

	interval, err := c.Schedule.IntervalDuration()
	if err != nil {
		return fmt.Errorf("schedule.interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive")
	}
	stagger, err := c.Schedule.StaggerDuration()
	if err != nil {
		return fmt.Errorf("schedule.stagger: %w", err)
	}
	if stagger < 0 {
		return fmt.Errorf("schedule.stagger must not be negative")
	}
	if c.Schedule.MaxCycles < 0 {
		return fmt.Errorf("schedule.max_cycles must not be negative")
	}

	switch c.PriceSource.Type {
	case "coingecko", "yahoo":
	case "static":
		if len(c.PriceSource.Prices) == 0 {
			return fmt.Errorf("price_source.prices required for static type")
		}
	default:
		return fmt.Errorf("price_source.type must be 'coingecko', 'yahoo' or 'static'")
	}
	if _, err := c.PriceSource.TimeoutDuration(); err != nil {
		return fmt.Errorf("price_source.timeout: %w", err)
	}

	if err := c.Journal.validate("journal"); err != nil {
		return err
	}
	for i, m := range c.Journal.Mirrors {
		if err := m.validate(fmt.Sprintf("journal.mirrors[%d]", i)); err != nil {
			return err
		}
	}

	if c.Risk.MaxPositionUSD < 0 || c.Risk.MinCashReserveUSD < 0 || c.Risk.MaxVolatility < 0 {
		return fmt.Errorf("risk limits must not be negative")
	}
	if c.Risk.MaxVolatility > 0 && c.Risk.VolatilityWindow == 1 {
		return fmt.Errorf("risk.volatility_window must be at least 2")
	}
	return nil
}

func (j JournalConfig) validate(field string) error {
	switch j.Type {
	case "text", "csv", "sqlite":
	default:
		return fmt.Errorf("%s.type must be 'text', 'csv' or 'sqlite'", field)
	}
	if j.Path == "" {
		return fmt.Errorf("%s.path is required", field)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency:    "USD",
			InitialCash: 100000,
		},
		Policy: PolicyConfig{
			TakeProfitRatio: 1.05,
			StopLossRatio:   0.95,
		},
		Assets: []AssetConfig{
			{Symbol: "BTC", BuyAmount: 100, SourceID: "bitcoin"},
			{Symbol: "ETH", BuyAmount: 50, SourceID: "ethereum"},
		},
		Schedule: ScheduleConfig{
			Interval: "1m",
			Stagger:  "3s",
		},
		PriceSource: PriceSourceConfig{
			Type:    "coingecko",
			Timeout: "10s",
		},
		Journal: JournalConfig{
			Type: "text",
			Path: "historico_de_trades_reais.txt",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}
