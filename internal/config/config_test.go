package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Asset.Symbol != "ETH" {
		t.Errorf("default symbol = %q, want ETH", cfg.Asset.Symbol)
	}
	if cfg.Schedule.CheckInterval != 5*time.Minute {
		t.Errorf("default interval = %v, want 5m", cfg.Schedule.CheckInterval)
	}
	if cfg.Strategy.HoldBandPct != 5 {
		t.Errorf("default hold band = %v, want 5", cfg.Strategy.HoldBandPct)
	}
	if cfg.Conviction.Buy.RSI != 25 || cfg.Conviction.Sell.ProfitZone != 20 {
		t.Errorf("conviction weight defaults not applied: %+v", cfg.Conviction)
	}
	if cfg.TrailingStop.Moderate != 0.06 {
		t.Errorf("default moderate trail = %v, want 0.06", cfg.TrailingStop.Moderate)
	}
	if len(cfg.Strategy.BuySteps) == 0 || len(cfg.Strategy.SellSteps) == 0 {
		t.Error("tier defaults not applied")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
asset:
  symbol: BTC
telegram:
  bot_token: file-token
  chat_id: "123"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Asset.Symbol != "BTC" {
		t.Errorf("symbol = %q, want BTC", cfg.Asset.Symbol)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("env override lost: %q", cfg.Telegram.BotToken)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate_MissingTelegram(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure without telegram credentials")
	}
}

func TestValidate_TierSigns(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Telegram.BotToken = "t"
	cfg.Telegram.ChatID = "c"
	cfg.Strategy.BuySteps = []BuyStep{{TriggerPct: 5, BuyPct: 0.5}}
	if err := cfg.Validate(); err == nil {
		t.Error("positive buy trigger should fail validation")
	}
}
