package calculator

import (
	"math"

	"CryptoSentinel/internal/model"
)

// VolatilityStats carries rolling volatility figures and the resulting tier.
type VolatilityStats struct {
	Vol7    float64 // mean absolute daily %change, last 7 samples
	Vol30   float64 // mean absolute daily %change, last 30 samples
	Current float64
	Tier    model.VolatilityTier
}

// Volatility measures mean absolute daily percentage change and maps the
// 30-sample figure to a tier. Thin history defaults to the moderate tier,
// which matches the stop tracker's fallback trail width.
func Volatility(prices []float64) VolatilityStats {
	if len(prices) < 5 {
		return VolatilityStats{Tier: model.VolatilityModerate}
	}

	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		changes = append(changes, math.Abs((prices[i]-prices[i-1])/prices[i-1]*100))
	}
	if len(changes) == 0 {
		return VolatilityStats{Tier: model.VolatilityModerate}
	}

	mean := func(window int) float64 {
		n := window
		if len(changes) < n {
			n = len(changes)
		}
		sum := 0.0
		for _, c := range changes[len(changes)-n:] {
			sum += c
		}
		return sum / float64(n)
	}

	vol30 := mean(30)
	tier := model.VolatilityLow
	switch {
	case vol30 > 5.0:
		tier = model.VolatilityExtreme
	case vol30 > 3.5:
		tier = model.VolatilityHigh
	case vol30 > 2.0:
		tier = model.VolatilityModerate
	}
	return VolatilityStats{
		Vol7:    mean(7),
		Vol30:   vol30,
		Current: changes[len(changes)-1],
		Tier:    tier,
	}
}
