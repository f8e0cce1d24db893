package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "https://api.marketdata.app", cfg.MarketData.RootEndpoint)
	assert.Equal(t, 10, cfg.MarketData.MaxStrikes)
	assert.Equal(t, 25.0, cfg.Screener.MinProbability)
	assert.InDelta(t, 0.0065, cfg.Trade.CommissionPerShare(), 1e-12)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.MarketData.RootEndpoint = "" },
			wantErr: true,
			errMsg:  "marketdata.root_endpoint is required",
		},
		{
			name:    "zero strikes",
			mutate:  func(c *Config) { c.MarketData.MaxStrikes = 0 },
			wantErr: true,
			errMsg:  "marketdata.max_strikes must be positive",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.MarketData.Timeout = "soon" },
			wantErr: true,
			errMsg:  "marketdata.timeout",
		},
		{
			name:    "min days not below max days",
			mutate:  func(c *Config) { c.Screener.MinDays = 60 },
			wantErr: true,
			errMsg:  "must be less than max_days",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Screener.Mode = "YOLO" },
			wantErr: true,
			errMsg:  "unknown screener mode",
		},
		{
			name:    "unknown leg type",
			mutate:  func(c *Config) { c.Screener.Legs = []string{"2", "5"} },
			wantErr: true,
			errMsg:  `unknown leg type "5"`,
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Weights.Delta = -1 },
			wantErr: true,
			errMsg:  "weights must not be negative",
		},
		{
			name:   "negative hundred trades weight allowed",
			mutate: func(c *Config) { c.Weights.HundredTrades = -1 },
		},
		{
			name:    "negative commission",
			mutate:  func(c *Config) { c.Trade.Commission = -0.1 },
			wantErr: true,
			errMsg:  "trade.commission must not be negative",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal dsn required",
		},
		{
			name:    "unknown journal",
			mutate:  func(c *Config) { c.Journal.Type = "csv" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:   "journal disabled",
			mutate: func(c *Config) { c.Journal.Type = "none" },
		},
		{
			name:    "bad ttl",
			mutate:  func(c *Config) { c.Cache.TTL = "-" },
			wantErr: true,
			errMsg:  "cache.ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeMode(t *testing.T) {
	m, err := NormalizeMode("bull-put-spread-screener")
	require.NoError(t, err)
	assert.Equal(t, ModeBullPutScreener, m)

	m, err = NormalizeMode("strategy_optimizer")
	require.NoError(t, err)
	assert.Equal(t, ModeStrategyOptimizer, m)

	_, err = NormalizeMode("")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
	}{
		{"JSON format", "config.json"},
		{"YAML format", "config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.filename)

			original := Default()
			original.Screener.Legs = []string{"2", "condors"}
			original.Weights.Probability = 3
			require.NoError(t, original.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("screener:\n  min_days: 5\n  max_days: 30\n  mode: STRATEGY_OPTIMIZER\n  legs: [\"2\"]\n  max_margin: 5000\n  max_results: 10\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Screener.MinDays)
	assert.Equal(t, 5000.0, cfg.Screener.MaxMargin)
	assert.Equal(t, 10, cfg.MarketData.MaxStrikes)
	assert.Equal(t, []string{"2"}, cfg.Screener.Legs)
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "invalid.json")
	require.NoError(t, os.WriteFile(path, []byte("{ invalid json"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MARKETDATA_API_TOKEN": "secret",
		"MIN_PROBABILITY":      "40",
		"DELTA_WEIGHT":         "3",
		"MAX_MARGIN":           "2500.5",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "secret", cfg.MarketData.Token)
	assert.Equal(t, 40.0, cfg.Screener.MinProbability)
	assert.Equal(t, 3, cfg.Weights.Delta)
	assert.Equal(t, 2500.5, cfg.Screener.MaxMargin)
	assert.Equal(t, 1, cfg.Weights.PricePoint)

	env["PRICE_POINT_WEIGHT"] = "lots"
	err := Default().ApplyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRICE_POINT_WEIGHT")
}

func TestResolveToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".marketdataapitoken")
	require.NoError(t, os.WriteFile(path, []byte("  tok123 \nignored\n"), 0600))

	cfg := Default()
	cfg.MarketData.TokenFile = path
	require.NoError(t, cfg.ResolveToken())
	assert.Equal(t, "tok123", cfg.MarketData.Token)

	cfg = Default()
	cfg.MarketData.Token = "explicit"
	cfg.MarketData.TokenFile = path
	require.NoError(t, cfg.ResolveToken())
	assert.Equal(t, "explicit", cfg.MarketData.Token)

	cfg = Default()
	cfg.MarketData.TokenFile = filepath.Join(dir, "missing")
	require.NoError(t, cfg.ResolveToken())
	assert.Empty(t, cfg.MarketData.Token)
}

func TestParseDurations(t *testing.T) {
	cfg := Default()
	d, err := cfg.MarketData.ParseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	ttl, err := cfg.Cache.ParseTTL()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)

	d, err = MarketDataConfig{}.ParseTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
}
