package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BuyStep is one buy tier: fire at trigger_pct below the reference price and
// commit buy_pct of available cash.
type BuyStep struct {
	TriggerPct float64 `yaml:"trigger_pct"`
	BuyPct     float64 `yaml:"buy_pct" validate:"gt=0,lte=1"`
}

// SellStep is one sell tier: fire at trigger_pct above the reference price and
// release sell_pct of the balance.
type SellStep struct {
	TriggerPct float64 `yaml:"trigger_pct"`
	SellPct    float64 `yaml:"sell_pct" validate:"gt=0,lte=1"`
}

// BuyWeights caps each conviction factor's contribution on the buy side.
type BuyWeights struct {
	LossMagnitude    int `yaml:"loss_magnitude" default:"10"`
	RSI              int `yaml:"rsi" default:"25"`
	SupportProximity int `yaml:"support_proximity" default:"20"`
	Trend            int `yaml:"trend" default:"15"`
	Volume           int `yaml:"volume" default:"15"`
	Percentile       int `yaml:"percentile" default:"10"`
	Momentum         int `yaml:"momentum" default:"5"`
}

// SellWeights caps each conviction factor's contribution on the sell side.
// Deliberately asymmetric to the buy side.
type SellWeights struct {
	ProfitZone          int `yaml:"profit_zone" default:"20"`
	RSI                 int `yaml:"rsi" default:"25"`
	ResistanceProximity int `yaml:"resistance_proximity" default:"15"`
	Trend               int `yaml:"trend" default:"15"`
	Volume              int `yaml:"volume" default:"10"`
	Percentile          int `yaml:"percentile" default:"10"`
	Momentum            int `yaml:"momentum" default:"5"`
}

// TrailingStop holds trail widths per volatility tier plus entry/exit floors.
// Widths are fractions (0.06 = 6%); ProfitFloorPct is a percentage to match
// how profit is reported.
type TrailingStop struct {
	Low            float64 `yaml:"low" default:"0.03"`
	Moderate       float64 `yaml:"moderate" default:"0.06"`
	High           float64 `yaml:"high" default:"0.10"`
	Extreme        float64 `yaml:"extreme" default:"0.15"`
	InitialStopPct float64 `yaml:"initial_stop_pct" default:"0.05"`
	ProfitFloorPct float64 `yaml:"profit_floor_pct" default:"0.5"`
}

// Config holds all application configuration.
type Config struct {
	Asset struct {
		Symbol   string `yaml:"symbol" default:"ETH" validate:"required"`
		Currency string `yaml:"currency" default:"hkd"`
	} `yaml:"asset"`
	Schedule struct {
		CheckInterval time.Duration `yaml:"check_interval" default:"5m" validate:"gt=0"`
	} `yaml:"schedule"`
	Strategy struct {
		HoldBandPct        float64    `yaml:"hold_band_pct" default:"5"`
		MinProfitThreshold float64    `yaml:"min_profit_threshold" default:"0.02"` // fraction above cost basis
		BuySteps           []BuyStep  `yaml:"buy_steps" validate:"dive"`
		SellSteps          []SellStep `yaml:"sell_steps" validate:"dive"`
		Buffer             struct {
			Buy  float64 `yaml:"buy" default:"1.0"`
			Sell float64 `yaml:"sell" default:"1.0"`
		} `yaml:"buffer"`
	} `yaml:"strategy"`
	Conviction struct {
		Buy  BuyWeights  `yaml:"buy"`
		Sell SellWeights `yaml:"sell"`
	} `yaml:"conviction"`
	Series struct {
		Capacity   int `yaml:"capacity" default:"100" validate:"gt=0"`
		MinSamples int `yaml:"min_samples" default:"10" validate:"gt=0"`
	} `yaml:"series"`
	TrailingStop TrailingStop `yaml:"trailing_stop"`
	Signals      struct {
		ConvictionDelta int     `yaml:"conviction_delta" default:"15"`
		PriceDeltaPct   float64 `yaml:"price_delta_pct" default:"3"`
	} `yaml:"signals"`
	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required"`
		ChatID   string `yaml:"chat_id" validate:"required"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL     string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
		HistoryDays int           `yaml:"history_days" default:"90"`
		CacheFile   string        `yaml:"cache_file" default:"data/history_cache.json"`
		CacheTTL    time.Duration `yaml:"cache_ttl" default:"6h"`
	} `yaml:"data_source"`
	Files struct {
		StateFile       string `yaml:"state_file" default:"data/state.txt"`
		PositionsFile   string `yaml:"positions_file" default:"data/trailing_stops.json"`
		SignalStateFile string `yaml:"signal_state_file" default:"data/signal_state.json"`
		PendingFile     string `yaml:"pending_file" default:"data/pending.json"`
	} `yaml:"files"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/crypto_sentinel.db"`
	} `yaml:"database"`
	Logging struct {
		Level      string `yaml:"level" default:"info"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"20"`
		MaxBackups int    `yaml:"max_backups" default:"3"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, fills defaults, then applies environment
// variable overrides. A missing file is not an error; defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Tier defaults cannot be expressed as struct tags.
	if len(cfg.Strategy.BuySteps) == 0 {
		cfg.Strategy.BuySteps = []BuyStep{
			{TriggerPct: -5, BuyPct: 0.30},
			{TriggerPct: -10, BuyPct: 0.40},
			{TriggerPct: -15, BuyPct: 0.30},
		}
	}
	if len(cfg.Strategy.SellSteps) == 0 {
		cfg.Strategy.SellSteps = []SellStep{
			{TriggerPct: 5, SellPct: 0.25},
			{TriggerPct: 10, SellPct: 0.35},
			{TriggerPct: 15, SellPct: 0.40},
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("ASSET_SYMBOL"); v != "" {
		cfg.Asset.Symbol = v
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Schedule.CheckInterval = d
		}
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.Files.StateFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if c.Series.MinSamples > c.Series.Capacity {
		return fmt.Errorf("series.min_samples (%d) exceeds series.capacity (%d)", c.Series.MinSamples, c.Series.Capacity)
	}
	for _, s := range c.Strategy.BuySteps {
		if s.TriggerPct >= 0 {
			return fmt.Errorf("buy step trigger_pct must be negative, got %v", s.TriggerPct)
		}
	}
	for _, s := range c.Strategy.SellSteps {
		if s.TriggerPct <= 0 {
			return fmt.Errorf("sell step trigger_pct must be positive, got %v", s.TriggerPct)
		}
	}
	return nil
}
