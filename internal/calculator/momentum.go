package calculator

import "CryptoSentinel/internal/model"

// EMA computes an exponential moving average seeded with a simple average of
// the first period samples. Falls back to a plain mean with thin history.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		sum := 0.0
		for _, p := range prices {
			sum += p
		}
		return sum / float64(len(prices))
	}
	multiplier := 2.0 / float64(period+1)
	ema := 0.0
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)
	for _, p := range prices[period:] {
		ema = p*multiplier + ema*(1-multiplier)
	}
	return ema
}

// MomentumResult carries the MACD value and its directional reading.
type MomentumResult struct {
	MACD   float64
	Signal model.Momentum
}

// DetectMomentum compares EMA(12) against EMA(26); the fast average above the
// slow one reads bullish. ok is false under 26 samples.
func DetectMomentum(prices []float64) (MomentumResult, bool) {
	if len(prices) < 26 {
		return MomentumResult{}, false
	}
	macd := EMA(prices, 12) - EMA(prices, 26)
	signal := model.MomentumBearish
	if macd > 0 {
		signal = model.MomentumBullish
	}
	return MomentumResult{MACD: macd, Signal: signal}, true
}
