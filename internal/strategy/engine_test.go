package strategy

import (
	"math"
	"testing"

	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/model"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := &config.Config{}
	cfg.Strategy.HoldBandPct = 5
	cfg.Strategy.MinProfitThreshold = 0.02
	cfg.Strategy.BuySteps = []config.BuyStep{
		{TriggerPct: -5, BuyPct: 0.30},
		{TriggerPct: -10, BuyPct: 0.40},
		{TriggerPct: -15, BuyPct: 0.30},
	}
	cfg.Strategy.SellSteps = []config.SellStep{
		{TriggerPct: 5, SellPct: 0.25},
		{TriggerPct: 10, SellPct: 0.35},
		{TriggerPct: 15, SellPct: 0.40},
	}
	cfg.Strategy.Buffer.Buy = 1.0
	cfg.Strategy.Buffer.Sell = 1.0
	return NewEngine(cfg)
}

func TestEvaluate_NotReadyWithoutReference(t *testing.T) {
	e := testEngine(t)
	if ev := e.Evaluate(100, 0, 1, 1000, nil); ev.Ready {
		t.Error("zero reference price should not produce a decision")
	}
	if ev := e.Evaluate(100, -1, 1, 1000, nil); ev.Ready {
		t.Error("negative reference price should not produce a decision")
	}
}

func TestEvaluate_HoldBandInclusive(t *testing.T) {
	e := testEngine(t)

	for _, price := range []float64{95, 100, 105} {
		ev := e.Evaluate(price, 100, 1, 1000, nil)
		if !ev.Ready || ev.Primary.Kind != model.DecisionHold {
			t.Errorf("price %v inside band should HOLD, got %+v", price, ev.Primary)
		}
	}

	// The band edge coincides with the first sell trigger; the band wins.
	ev := e.Evaluate(105.01, 100, 1, 1000, nil)
	if ev.Primary.Kind != model.DecisionSell {
		t.Errorf("price just above band should SELL, got %v", ev.Primary.Kind)
	}
	ev = e.Evaluate(94.99, 100, 1, 1000, nil)
	if ev.Primary.Kind != model.DecisionBuy {
		t.Errorf("price just below band should BUY, got %v", ev.Primary.Kind)
	}
}

func TestEvaluate_ProfitGate(t *testing.T) {
	e := testEngine(t)
	basis := 105.0

	// Sell trigger fires at 105 but the gate needs 105*1.02 = 107.1.
	ev := e.Evaluate(106, 100, 1, 1000, &basis)
	if ev.Primary.Kind != model.DecisionHold {
		t.Errorf("gated sell should fall through to HOLD, got %v", ev.Primary.Kind)
	}

	ev = e.Evaluate(107.2, 100, 1, 1000, &basis)
	if ev.Primary.Kind != model.DecisionSell {
		t.Fatalf("price past the gate should SELL, got %v", ev.Primary.Kind)
	}
	if !ev.Primary.HasProfit || ev.Primary.ProfitPct <= 2 {
		t.Errorf("sell should carry profit %% above the threshold, got %+v", ev.Primary)
	}

	// Without a cost basis the gate does not apply.
	ev = e.Evaluate(106, 100, 1, 1000, nil)
	if ev.Primary.Kind != model.DecisionSell {
		t.Errorf("nil cost basis should sell permissively, got %v", ev.Primary.Kind)
	}
}

func TestEvaluate_TierOrderingAndAmounts(t *testing.T) {
	e := testEngine(t)

	// 85 reaches all three buy tiers; the shallowest is primary.
	ev := e.Evaluate(85, 100, 1, 1000, nil)
	if ev.Primary.Kind != model.DecisionBuy || ev.Primary.TriggerPct != -5 {
		t.Fatalf("primary should be the -5%% tier, got %+v", ev.Primary)
	}
	if len(ev.Extras) != 2 {
		t.Fatalf("deeper tiers should be informational, got %d extras", len(ev.Extras))
	}
	if ev.Primary.Amount != 300 || ev.Extras[0].Amount != 400 || ev.Extras[1].Amount != 300 {
		t.Errorf("buy amounts = %v/%v/%v, want 300/400/300",
			ev.Primary.Amount, ev.Extras[0].Amount, ev.Extras[1].Amount)
	}

	// Sell amounts are asset quantities, rounded to 6 places.
	ev = e.Evaluate(106, 100, 0.333333333, 0, nil)
	if ev.Primary.Kind != model.DecisionSell {
		t.Fatalf("expected SELL, got %v", ev.Primary.Kind)
	}
	if ev.Primary.Amount != 0.083333 {
		t.Errorf("sell amount = %v, want 0.083333", ev.Primary.Amount)
	}
}

func TestEvaluate_NoTierOutsideBand(t *testing.T) {
	cfg := &config.Config{}
	cfg.Strategy.HoldBandPct = 2
	cfg.Strategy.MinProfitThreshold = 0.02
	cfg.Strategy.BuySteps = []config.BuyStep{{TriggerPct: -10, BuyPct: 0.5}}
	cfg.Strategy.SellSteps = []config.SellStep{{TriggerPct: 10, SellPct: 0.5}}
	cfg.Strategy.Buffer.Buy = 1.0
	cfg.Strategy.Buffer.Sell = 1.0
	e := NewEngine(cfg)

	// 5% above reference: outside the band, below the 10% tier.
	ev := e.Evaluate(105, 100, 1, 1000, nil)
	if !ev.Ready || ev.Primary.Kind != model.DecisionHold {
		t.Errorf("no tier fired, expected synthesized HOLD, got %+v", ev.Primary)
	}
}

func TestEvaluate_SellScenario(t *testing.T) {
	e := testEngine(t)
	basis := 30743.0

	ev := e.Evaluate(32000, 30000, 0.46669, 2289.95, &basis)
	if ev.Primary.Kind != model.DecisionSell {
		t.Fatalf("expected SELL, got %+v", ev.Primary)
	}
	if ev.Primary.TriggerPct != 5 {
		t.Errorf("trigger tier = %v, want 5", ev.Primary.TriggerPct)
	}
	if math.Abs(ev.Primary.ProfitPct-4.09) > 0.01 {
		t.Errorf("profit pct = %v, want ~4.09", ev.Primary.ProfitPct)
	}
	proceeds := ev.Primary.Amount * ev.Primary.Price
	if math.Abs(proceeds-3733.52) > 0.5 {
		t.Errorf("proceeds = %v, want ~3733.52 (25%% of balance at 32000)", proceeds)
	}
}
