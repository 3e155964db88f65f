package strategy

import (
	"fmt"
	"math"

	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/model"
)

// Evaluation is the engine output for one tick. Ready is false while the
// reference price is unavailable; once ready, Primary is always set and
// Extras lists further tiers that also fired, for information only.
type Evaluation struct {
	Ready   bool
	Primary *model.Decision
	Extras  []model.Decision
}

// Engine classifies one evaluation tick into HOLD, BUY, or SELL. It is
// stateless across ticks; hysteresis lives in the signal-state tracker.
type Engine struct {
	holdBandPct float64
	minProfit   float64
	buySteps    []config.BuyStep
	sellSteps   []config.SellStep
	buyBuffer   float64
	sellBuffer  float64
}

// NewEngine builds an engine from the strategy configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		holdBandPct: cfg.Strategy.HoldBandPct,
		minProfit:   cfg.Strategy.MinProfitThreshold,
		buySteps:    cfg.Strategy.BuySteps,
		sellSteps:   cfg.Strategy.SellSteps,
		buyBuffer:   cfg.Strategy.Buffer.Buy,
		sellBuffer:  cfg.Strategy.Buffer.Sell,
	}
}

// Evaluate runs the fixed-order transition rules. costBasis may be nil; SELL
// tiers then skip the profit gate entirely (permissive legacy behaviour).
func (e *Engine) Evaluate(price, refPrice, balance, cash float64, costBasis *float64) Evaluation {
	if refPrice <= 0 {
		return Evaluation{}
	}

	band := refPrice * e.holdBandPct / 100
	if price >= refPrice-band && price <= refPrice+band {
		d := model.Decision{
			Kind:   model.DecisionHold,
			Price:  round2(price),
			Reason: fmt.Sprintf("price within ±%.1f%% of reference %.2f", e.holdBandPct, refPrice),
		}
		return Evaluation{Ready: true, Primary: &d}
	}

	var fired []model.Decision

	for _, step := range e.sellSteps {
		trigger := refPrice * (1 + step.TriggerPct/100) * e.sellBuffer
		if price < trigger {
			continue
		}
		d := model.Decision{
			Kind:       model.DecisionSell,
			Price:      round2(price),
			TriggerPct: step.TriggerPct,
			Amount:     round6(balance * step.SellPct),
			Reason:     fmt.Sprintf("price %.2f reached sell trigger %.2f (+%.1f%% tier)", price, trigger, step.TriggerPct),
		}
		if costBasis != nil && *costBasis > 0 {
			// Profit gate: a tier inside the minimum-profit band is skipped
			// outright, never partially honoured.
			if price < *costBasis*(1+e.minProfit) {
				continue
			}
			d.ProfitPct = (price - *costBasis) / *costBasis * 100
			d.HasProfit = true
		}
		fired = append(fired, d)
	}

	for _, step := range e.buySteps {
		trigger := refPrice * (1 + step.TriggerPct/100) * e.buyBuffer
		if price > trigger {
			continue
		}
		fired = append(fired, model.Decision{
			Kind:       model.DecisionBuy,
			Price:      round2(price),
			TriggerPct: step.TriggerPct,
			Amount:     round2(cash * step.BuyPct),
			Reason:     fmt.Sprintf("price %.2f reached buy trigger %.2f (%.1f%% tier)", price, trigger, step.TriggerPct),
		})
	}

	if len(fired) == 0 {
		d := model.Decision{
			Kind:   model.DecisionHold,
			Price:  round2(price),
			Reason: fmt.Sprintf("outside ±%.1f%% band of reference %.2f but no tier triggered", e.holdBandPct, refPrice),
		}
		return Evaluation{Ready: true, Primary: &d}
	}
	return Evaluation{Ready: true, Primary: &fired[0], Extras: fired[1:]}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
