// Package scheduler runs the evaluation loop and serves user commands.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"CryptoSentinel/internal/analyzer"
	"CryptoSentinel/internal/collector"
	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/model"
	"CryptoSentinel/internal/notifier"
	"CryptoSentinel/internal/position"
	"CryptoSentinel/internal/recorder"
	"CryptoSentinel/internal/series"
	"CryptoSentinel/internal/signalstate"
	"CryptoSentinel/internal/statefile"
	"CryptoSentinel/internal/strategy"
)

// Sender delivers a message to the user, retrying transient failures.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler owns the periodic evaluation tick and the command handlers. Ticks
// are serialized: a slow fetch never overlaps the next interval.
type Scheduler struct {
	Cron     *cron.Cron
	Cfg      *config.Config
	Fetcher  collector.Fetcher
	Series   *series.Series
	Scorer   *strategy.Scorer
	Engine   *strategy.Engine
	Stops    *position.Tracker
	Signals  *signalstate.Tracker
	Notifier Sender
	Recorder recorder.Recorder
	Ctx      context.Context

	mu        sync.Mutex
	lastChart *collector.MarketChart
	lastPrice float64
}

// New creates a scheduler wired to all collaborators.
func New(ctx context.Context, cfg *config.Config, f collector.Fetcher, sr *series.Series,
	sc *strategy.Scorer, en *strategy.Engine, st *position.Tracker,
	sig *signalstate.Tracker, tn Sender, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Cfg:      cfg,
		Fetcher:  f,
		Series:   sr,
		Scorer:   sc,
		Engine:   en,
		Stops:    st,
		Signals:  sig,
		Notifier: tn,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// Register adds the evaluation tick at the configured interval.
func (s *Scheduler) Register() error {
	spec := fmt.Sprintf("@every %s", s.Cfg.Schedule.CheckInterval)
	if _, err := s.Cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Dur("interval", s.Cfg.Schedule.CheckInterval).Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunTickNow executes one evaluation immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunTickNow() {
	s.tick()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A decision awaiting confirmation gates further evaluation so the ledger
	// cannot drift ahead of an unconfirmed trade.
	if p := statefile.LoadPending(s.Cfg.Files.PendingFile); p.Pending {
		log.Info().Msg("pending decision, skipping tick")
		return
	}

	state, err := statefile.Load(s.Cfg.Files.StateFile, s.Cfg.Asset.Symbol)
	if err != nil {
		log.Error().Err(err).Msg("cannot load state, skipping tick")
		return
	}

	price, err := s.Fetcher.FetchPrice(s.Cfg.Asset.Symbol)
	if err != nil {
		// Transient by contract: nothing is updated, the next tick retries.
		log.Warn().Err(err).Msg("price fetch failed, skipping tick")
		return
	}
	s.lastPrice = price

	if err := s.Series.Append(model.PricePoint{Time: time.Now(), Price: price}); err != nil {
		log.Warn().Err(err).Float64("price", price).Msg("sample rejected")
	}

	chart, err := s.Fetcher.FetchMarketChart(s.Cfg.Asset.Symbol, s.Cfg.DataSource.HistoryDays)
	if err != nil {
		log.Warn().Err(err).Msg("history fetch failed, reusing last chart")
		chart = s.lastChart
	} else {
		s.lastChart = chart
	}

	var prices, volumes []float64
	if chart != nil {
		prices = append(prices, chart.Prices...)
		volumes = chart.Volumes
	}
	prices = append(prices, price)
	snap := analyzer.Analyze(prices, volumes)

	refPrice := state.ReferencePrice
	if refPrice <= 0 {
		if ma, ok := s.Series.MovingAverage(); ok {
			refPrice = ma
		}
	}

	ev := s.Engine.Evaluate(price, refPrice, state.Balance, state.AvailableCash, state.CostBasisPtr())
	if !ev.Ready {
		log.Info().Float64("price", price).Msg("no reference price yet, not ready")
		return
	}
	decision := ev.Primary

	if s.Series.ConvictionReady() && decision.Kind != model.DecisionHold {
		side := strategy.SideBuy
		if decision.Kind == model.DecisionSell {
			side = strategy.SideSell
		}
		decision.Conviction = s.Scorer.Score(snap, side, price, state.CostBasisPtr())
	}

	// Trailing stops run every tick regardless of the engine outcome; a breach
	// overrides whatever the tiers said.
	forced := s.Stops.UpdateAll(price, snap.Volatility)
	for _, fs := range forced {
		if err := s.Recorder.RecordStopEvent(&recorder.StopEvent{
			Asset: s.Cfg.Asset.Symbol, PositionID: fs.PositionID, Price: fs.Price,
			PeakPrice: fs.PeakPrice, StopPrice: fs.StopPrice, ProfitPct: fs.ProfitPct,
		}); err != nil {
			log.Error().Err(err).Msg("record stop event")
		}
	}
	if len(forced) > 0 {
		fs := forced[0]
		decision = &model.Decision{
			Kind:       model.DecisionSell,
			Price:      fs.Price,
			Amount:     fs.Amount,
			Reason:     fs.Reason,
			ProfitPct:  fs.ProfitPct,
			HasProfit:  true,
			Forced:     true,
			PositionID: fs.PositionID,
			Conviction: decision.Conviction,
		}
	}

	notify, why := s.Signals.ShouldNotify(decision.Kind, decision.Conviction, price)
	log.Info().
		Str("decision", string(decision.Kind)).
		Float64("price", price).
		Float64("reference", refPrice).
		Int("conviction", decision.Conviction).
		Bool("notify", notify).
		Str("filter", why).
		Msg("tick evaluated")

	if notify {
		var msg string
		if decision.Forced {
			msg = notifier.FormatForcedSell(s.Cfg.Asset.Symbol, forced[0])
		} else {
			msg = notifier.FormatDecision(s.Cfg.Asset.Symbol, decision, snap, refPrice)
		}
		if err := s.Notifier.SendWithRetry(s.Ctx, msg, 3); err != nil {
			log.Error().Err(err).Msg("notification failed, state unchanged")
			notify = false
		} else {
			if err := s.Signals.UpdateState(decision.Kind, decision.Conviction, price, decision.Reason); err != nil {
				log.Error().Err(err).Msg("persist signal state")
			}
			if decision.Kind != model.DecisionHold {
				if err := statefile.SavePending(s.Cfg.Files.PendingFile, decision, refPrice); err != nil {
					log.Error().Err(err).Msg("persist pending decision")
				}
			}
			if err := s.Recorder.RecordSignal(&recorder.SignalEvent{
				Asset: s.Cfg.Asset.Symbol, Kind: decision.Kind, Price: decision.Price,
				TriggerPct: decision.TriggerPct, Amount: decision.Amount,
				Conviction: decision.Conviction, Reason: decision.Reason, Forced: decision.Forced,
			}); err != nil {
				log.Error().Err(err).Msg("record signal")
			}
		}
	}

	if err := s.Recorder.RecordTick(&recorder.TickEvent{
		Asset: s.Cfg.Asset.Symbol, Price: price, ReferencePrice: refPrice,
		Decision: decision.Kind, Conviction: decision.Conviction,
		RSI: snap.RSI, Trend: string(snap.Trend), Volatility: string(snap.Volatility),
		Notified: notify,
	}); err != nil {
		log.Error().Err(err).Msg("record tick")
	}
}

// HandleCommand serves the Telegram command interface.
func (s *Scheduler) HandleCommand(command string) string {
	cmd := strings.Fields(command)
	if len(cmd) == 0 {
		return ""
	}
	switch strings.ToLower(cmd[0]) {
	case "/status":
		return s.statusReply()
	case "/positions":
		return notifier.FormatPositions(s.Cfg.Asset.Symbol, s.Stops.ActivePositions(), s.currentPrice())
	case "/signal":
		go s.RunTickNow()
		return "Running evaluation now."
	case "/pending":
		return notifier.FormatPending(statefile.LoadPending(s.Cfg.Files.PendingFile))
	case "/confirm":
		return s.confirmPending()
	case "/skip":
		if err := statefile.ClearPending(s.Cfg.Files.PendingFile); err != nil {
			return fmt.Sprintf("Cannot clear pending decision: %v", err)
		}
		return "Skipped. The next tick evaluates fresh."
	case "/help":
		return "Commands:\n/status - holdings and P/L\n/positions - open positions and stops\n" +
			"/signal - evaluate now\n/pending - show unconfirmed decision\n" +
			"/confirm - mark pending trade as executed\n/skip - discard pending decision"
	default:
		return ""
	}
}

func (s *Scheduler) statusReply() string {
	state, err := statefile.Load(s.Cfg.Files.StateFile, s.Cfg.Asset.Symbol)
	if err != nil {
		return fmt.Sprintf("Cannot load state: %v", err)
	}
	return notifier.FormatStatus(state, s.currentPrice())
}

func (s *Scheduler) currentPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrice
}

// confirmPending applies the awaiting decision to the ledger: weighted-average
// cost basis on buys, proceeds to cash on sells, and a reference price reset
// so future tiers measure from the executed price.
func (s *Scheduler) confirmPending() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := statefile.LoadPending(s.Cfg.Files.PendingFile)
	if !p.Pending || p.Decision == nil {
		return "Nothing awaiting confirmation."
	}
	d := p.Decision

	state, err := statefile.Load(s.Cfg.Files.StateFile, s.Cfg.Asset.Symbol)
	if err != nil {
		return fmt.Sprintf("Cannot load state: %v", err)
	}

	switch d.Kind {
	case model.DecisionBuy:
		if err := state.ApplyBuy(d.Amount, d.Price); err != nil {
			return fmt.Sprintf("Cannot apply buy: %v", err)
		}
		if _, err := s.Stops.RecordBuy(d.Price, d.Amount/d.Price); err != nil {
			log.Error().Err(err).Msg("track bought position")
		}
	case model.DecisionSell:
		if err := state.ApplySell(d.Amount, d.Price); err != nil {
			return fmt.Sprintf("Cannot apply sell: %v", err)
		}
		if d.Forced && d.PositionID != "" {
			if err := s.Stops.ClosePosition(d.PositionID, d.Price, d.ProfitPct); err != nil {
				log.Error().Err(err).Str("position", d.PositionID).Msg("close position")
			}
		}
	default:
		return "Pending decision is not a trade."
	}
	state.ReferencePrice = d.Price

	if err := state.Save(s.Cfg.Files.StateFile); err != nil {
		return fmt.Sprintf("Trade applied but state save failed: %v", err)
	}
	if err := s.Recorder.RecordTrade(&recorder.TradeEvent{
		Asset: s.Cfg.Asset.Symbol, Side: d.Kind, Price: d.Price, Amount: d.Amount,
		CashAfter: state.AvailableCash, BalanceAfter: state.Balance, CostBasis: state.CostBasis,
	}); err != nil {
		log.Error().Err(err).Msg("record trade")
	}
	if err := statefile.ClearPending(s.Cfg.Files.PendingFile); err != nil {
		log.Error().Err(err).Msg("clear pending")
	}

	return fmt.Sprintf("✅ %s confirmed at %.2f.\nBalance %.6f | Cash $%.2f | Cost basis %.2f",
		d.Kind, d.Price, state.Balance, state.AvailableCash, state.CostBasis)
}
