package analyzer

import (
	"math"

	"github.com/rs/zerolog/log"

	"CryptoSentinel/internal/calculator"
	"CryptoSentinel/internal/model"
)

// proximityPct is how close (in percent) the price must sit to a level to
// count as "near" it for scoring purposes.
const proximityPct = 3.0

// Analyze derives the full technical snapshot for one tick from daily price
// and volume history. Individual indicators that cannot be computed fall back
// to neutral readings; the snapshot itself is always produced.
func Analyze(prices, volumes []float64) model.TechnicalSnapshot {
	snap := model.TechnicalSnapshot{
		Trend:        model.TrendInsufficient,
		Volatility:   model.VolatilityModerate,
		VolumeSignal: model.VolumeInsufficient,
		Momentum:     model.MomentumBearish,
		Percentile:   50,
	}
	if len(prices) == 0 {
		log.Warn().Msg("no price history, returning neutral snapshot")
		return snap
	}
	current := prices[len(prices)-1]

	if rsi, ok := calculator.RSI(prices, 14); ok {
		snap.RSI = rsi
		snap.RSIValid = true
	} else {
		log.Debug().Int("samples", len(prices)).Msg("rsi unavailable, insufficient history")
	}

	if levels, ok := calculator.SupportResistance(prices); ok {
		snap.Support = levels.Support
		snap.Resistance = levels.Resistance
		snap.Pivot = levels.Pivot
		snap.NearSupport = withinPct(current, levels.Support, proximityPct)
		snap.NearResistance = withinPct(current, levels.Resistance, proximityPct)
	}

	trend := calculator.DetectTrend(prices)
	snap.Trend = trend.Trend
	snap.TrendStrength = trend.Strength

	snap.Volatility = calculator.Volatility(prices).Tier
	snap.VolumeSignal = calculator.AnalyzeVolume(volumes).Signal
	snap.Percentile = calculator.Percentile(current, prices)

	if m, ok := calculator.DetectMomentum(prices); ok {
		snap.Momentum = m.Signal
	}

	snap.Capitulation = calculator.DetectCapitulation(prices, volumes, 5.0)
	if snap.Capitulation.Detected {
		log.Info().
			Float64("probability", snap.Capitulation.Probability).
			Float64("severity", snap.Capitulation.Severity).
			Msg("capitulation pattern detected")
	}
	return snap
}

func withinPct(price, level, pct float64) bool {
	if level <= 0 {
		return false
	}
	return math.Abs(price-level)/level*100 <= pct
}
