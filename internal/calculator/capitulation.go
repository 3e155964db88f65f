package calculator

import (
	"math"

	"CryptoSentinel/internal/model"
)

// DetectCapitulation checks for panic selling: a drop of at least dropPct on
// spiking volume near recent lows. Probability is the fraction of the four
// component signals present; severity normalises the drop against a 5% move.
func DetectCapitulation(prices, volumes []float64, dropPct float64) model.Capitulation {
	if len(prices) < 5 || len(volumes) == 0 {
		return model.Capitulation{}
	}
	if dropPct <= 0 {
		dropPct = 5.0
	}

	last := prices[len(prices)-1]
	prev := prices[len(prices)-2]
	if prev == 0 {
		return model.Capitulation{}
	}
	pctChange := (last - prev) / prev * 100
	if pctChange > -dropPct {
		return model.Capitulation{}
	}

	stats := AnalyzeVolume(volumes)

	signals := 0
	if pctChange < -dropPct {
		signals++
	}
	if stats.SpikeFactor > 1.5 {
		signals++
	}
	if stats.SpikeFactor > 2.0 {
		signals++
	}
	// Fresh low against the window before today.
	lowWindow := prices[:len(prices)-1]
	if len(lowWindow) > 10 {
		lowWindow = lowWindow[len(lowWindow)-10:]
	}
	recentLow := lowWindow[0]
	for _, p := range lowWindow {
		if p < recentLow {
			recentLow = p
		}
	}
	if last <= recentLow*0.99 {
		signals++
	}

	probability := float64(signals) / 4 * 100
	severity := math.Min(100, math.Abs(pctChange)/5.0*100)
	return model.Capitulation{
		Detected:    probability > 60,
		Probability: probability,
		Severity:    severity,
		Signals:     signals,
	}
}
