package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"CryptoSentinel/internal/collector"
	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/logging"
	"CryptoSentinel/internal/notifier"
	"CryptoSentinel/internal/position"
	"CryptoSentinel/internal/recorder"
	"CryptoSentinel/internal/scheduler"
	"CryptoSentinel/internal/series"
	"CryptoSentinel/internal/signalstate"
	"CryptoSentinel/internal/strategy"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	log.Info().Str("asset", cfg.Asset.Symbol).Msg("CryptoSentinel starting")

	var fetcher collector.Fetcher
	if os.Getenv("MOCK_FETCHER") == "true" {
		fetcher = &collector.MockFetcher{Price: 22000}
	} else {
		fetcher = collector.NewCoinGeckoFetcher(
			cfg.DataSource.BaseURL, cfg.Asset.Currency, cfg.Proxy,
			cfg.DataSource.CacheFile, cfg.DataSource.CacheTTL)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	prices := series.New(cfg.Series.Capacity, cfg.Series.MinSamples)
	scorer := strategy.NewScorer(cfg.Conviction.Buy, cfg.Conviction.Sell)
	engine := strategy.NewEngine(cfg)
	stops := position.NewTracker(cfg.Files.PositionsFile, cfg.TrailingStop)
	signals := signalstate.NewTracker(cfg.Files.SignalStateFile, cfg.Signals.ConvictionDelta, cfg.Signals.PriceDeltaPct)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, cfg, fetcher, prices, scorer, engine, stops, signals, tn, rec)
	if err := sched.Register(); err != nil {
		log.Fatal().Err(err).Msg("register tick")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, evaluating now")
		go sched.RunTickNow()
	}

	log.Info().Msg("CryptoSentinel is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("CryptoSentinel stopped")
}
