package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Screener modes and leg types understood by the screener.
const (
	ModeStrategyOptimizer = "STRATEGY_OPTIMIZER"
	ModeBullPutScreener   = "BULL_PUT_SPREAD_SCREENER"
)

var LegTypes = []string{"2", "3", "4", "2+", "3+", "4+", "condors", "bullputspreads"}

// Config represents the complete screener configuration
type Config struct {
	LogLevel   string           `json:"log_level" yaml:"log_level"`
	MarketData MarketDataConfig `json:"marketdata" yaml:"marketdata"`
	Screener   ScreenerConfig   `json:"screener" yaml:"screener"`
	Weights    WeightsConfig    `json:"weights" yaml:"weights"`
	Trade      TradeConfig      `json:"trade" yaml:"trade"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
}

// MarketDataConfig points at the option chain vendor
type MarketDataConfig struct {
	RootEndpoint string `json:"root_endpoint" yaml:"root_endpoint"`
	Token        string `json:"token,omitempty" yaml:"token,omitempty"`
	TokenFile    string `json:"token_file,omitempty" yaml:"token_file,omitempty"`
	MaxStrikes   int    `json:"max_strikes" yaml:"max_strikes"`
	Timeout      string `json:"timeout" yaml:"timeout"` // e.g. "30s"
}

// ParseTimeout converts the timeout string to time.Duration
func (m MarketDataConfig) ParseTimeout() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(m.Timeout)
}

// ScreenerConfig holds the expiration window and scoring thresholds
type ScreenerConfig struct {
	Mode                  string   `json:"mode" yaml:"mode"`
	MinDays               int      `json:"min_days" yaml:"min_days"`
	MaxDays               int      `json:"max_days" yaml:"max_days"`
	Legs                  []string `json:"legs" yaml:"legs"`
	Workers               int      `json:"workers" yaml:"workers"`
	MinAnnualReturn       float64  `json:"min_annual_return" yaml:"min_annual_return"`
	MinProbability        float64  `json:"min_probability" yaml:"min_probability"`
	MinProfitAmount       float64  `json:"min_profit_amount" yaml:"min_profit_amount"`
	MaxMargin             float64  `json:"max_margin" yaml:"max_margin"`
	MinBullPutStrikeBelow float64  `json:"min_bull_put_strike_below" yaml:"min_bull_put_strike_below"`
	MaxResults            int      `json:"max_results" yaml:"max_results"`
}

// WeightsConfig scales each normalized metric in the final score
type WeightsConfig struct {
	PricePoint    int `json:"price_point" yaml:"price_point"`
	ProfitPoints  int `json:"profit_points" yaml:"profit_points"`
	Probability   int `json:"probability" yaml:"probability"`
	ProfitLoss    int `json:"profit_loss" yaml:"profit_loss"`
	AnnualReturn  int `json:"annual_return" yaml:"annual_return"`
	Delta         int `json:"delta" yaml:"delta"`
	HundredTrades int `json:"hundred_trades" yaml:"hundred_trades"`
}

// TradeConfig holds brokerage costs
type TradeConfig struct {
	Commission float64 `json:"commission" yaml:"commission"` // per contract
}

// CommissionPerShare is the per-contract commission spread over 100 shares.
func (t TradeConfig) CommissionPerShare() float64 {
	return t.Commission / 100
}

type OutputConfig struct {
	CSVDir string `json:"csv_dir" yaml:"csv_dir"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type      string `json:"type" yaml:"type"` // "none", "sqlite" or "postgres"
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN       string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	TopTrades int    `json:"top_trades" yaml:"top_trades"`
}

// CacheConfig enables the Redis response cache when RedisAddr is set
type CacheConfig struct {
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisDB   int    `json:"redis_db" yaml:"redis_db"`
	TTL       string `json:"ttl" yaml:"ttl"`
}

// ParseTTL converts the ttl string to time.Duration
func (c CacheConfig) ParseTTL() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.TTL)
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// Load returns Default() when path is empty, otherwise the file at path.
// Environment overrides are applied afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	// A missing .env is fine.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.ResolveToken(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML)
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

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// envOverrides maps environment variables onto numeric settings.
func (c *Config) envOverrides() map[string]any {
	return map[string]any{
		"MIN_ANNUAL_RETURN":         &c.Screener.MinAnnualReturn,
		"MIN_PROBABILITY":           &c.Screener.MinProbability,
		"MIN_PROFIT_AMOUNT":         &c.Screener.MinProfitAmount,
		"MAX_MARGIN":                &c.Screener.MaxMargin,
		"MIN_BULL_PUT_STRIKE_BELOW": &c.Screener.MinBullPutStrikeBelow,
		"PRICE_POINT_WEIGHT":        &c.Weights.PricePoint,
		"PROFIT_POINT_WEIGHT":       &c.Weights.ProfitPoints,
		"PROBABILITY_WEIGHT":        &c.Weights.Probability,
		"PROFIT_LOSS_WEIGHT":        &c.Weights.ProfitLoss,
		"ANNUAL_RETURN_WEIGHT":      &c.Weights.AnnualReturn,
		"DELTA_WEIGHT":              &c.Weights.Delta,
		"HUNDRED_TRADE_WEIGHT":      &c.Weights.HundredTrades,
	}
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MARKETDATA_API_TOKEN"); ok && v != "" {
		c.MarketData.Token = v
	}
	if v, ok := lookup("MARKETDATA_ROOT_ENDPOINT"); ok && v != "" {
		c.MarketData.RootEndpoint = v
	}

	for name, dst := range c.envOverrides() {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		switch p := dst.(type) {
		case *float64:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			*p = f
		case *int:
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
			*p = n
		}
	}
	return nil
}

// ResolveToken reads the API token from TokenFile when no token was given.
func (c *Config) ResolveToken() error {
	if c.MarketData.Token != "" || c.MarketData.TokenFile == "" {
		return nil
	}

	f, err := os.Open(c.MarketData.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		c.MarketData.Token = strings.TrimSpace(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MarketData.RootEndpoint == "" {
		return fmt.Errorf("marketdata.root_endpoint is required")
	}
	if c.MarketData.MaxStrikes <= 0 {
		return fmt.Errorf("marketdata.max_strikes must be positive")
	}
	if _, err := c.MarketData.ParseTimeout(); err != nil {
		return fmt.Errorf("marketdata.timeout: %w", err)
	}
	if err := c.Screener.validate(); err != nil {
		return err
	}
	w := c.Weights
	for _, v := range []int{w.PricePoint, w.ProfitPoints, w.Probability, w.ProfitLoss, w.AnnualReturn, w.Delta} {
		if v < 0 {
			return fmt.Errorf("weights must not be negative")
		}
	}
	if c.Trade.Commission < 0 {
		return fmt.Errorf("trade.commission must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "postgres":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for postgres type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'sqlite' or 'postgres'")
	}
	if _, err := c.Cache.ParseTTL(); err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	return nil
}

func (s ScreenerConfig) validate() error {
	if s.MinDays < 0 {
		return fmt.Errorf("screener.min_days must not be negative")
	}
	if s.MinDays >= s.MaxDays {
		return fmt.Errorf("screener.min_days (%d) must be less than max_days (%d)", s.MinDays, s.MaxDays)
	}
	if _, err := NormalizeMode(s.Mode); err != nil {
		return err
	}
	if len(s.Legs) == 0 {
		return fmt.Errorf("screener.legs is required")
	}
	for _, l := range s.Legs {
		if !knownLeg(l) {
			return fmt.Errorf("unknown leg type %q", l)
		}
	}
	if s.MaxMargin <= 0 {
		return fmt.Errorf("screener.max_margin must be positive")
	}
	if s.MaxResults <= 0 {
		return fmt.Errorf("screener.max_results must be positive")
	}
	if s.Workers < 0 {
		return fmt.Errorf("screener.workers must not be negative")
	}
	return nil
}

func knownLeg(l string) bool {
	for _, k := range LegTypes {
		if l == k {
			return true
		}
	}
	return false
}

// NormalizeMode maps any casing of a mode name, with '-' or '_', to its
// canonical form.
func NormalizeMode(s string) (string, error) {
	m := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch m {
	case ModeStrategyOptimizer, ModeBullPutScreener:
		return m, nil
	}
	return "", fmt.Errorf("unknown screener mode %q", s)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		LogLevel: "info",
		MarketData: MarketDataConfig{
			RootEndpoint: "https://api.marketdata.app",
			TokenFile:    ".marketdataapitoken",
			MaxStrikes:   10,
			Timeout:      "30s",
		},
		Screener: ScreenerConfig{
			Mode:                  ModeStrategyOptimizer,
			MinDays:               20,
			MaxDays:               60,
			Legs:                  []string{"2", "3", "4"},
			MinAnnualReturn:       1,
			MinProbability:        25,
			MinProfitAmount:       0.5,
			MaxMargin:             10_000,
			MinBullPutStrikeBelow: 2,
			MaxResults:            100,
		},
		Weights: WeightsConfig{
			PricePoint:    1,
			ProfitPoints:  1,
			Probability:   1,
			ProfitLoss:    1,
			AnnualReturn:  1,
			Delta:         1,
			HundredTrades: 1,
		},
		Trade: TradeConfig{
			Commission: 0.65,
		},
		Output: OutputConfig{
			CSVDir: "./output/csv",
		},
		Journal: JournalConfig{
			Type:      "sqlite",
			DBPath:    "./optionometer.sqlite",
			TopTrades: 10,
		},
		Cache: CacheConfig{
			TTL: "15m",
		},
	}
}
