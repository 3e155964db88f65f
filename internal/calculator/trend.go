package calculator

import "CryptoSentinel/internal/model"

// TrendResult carries the trend classification and its supporting counts.
type TrendResult struct {
	Trend      model.Trend
	Strength   float64 // -1..1, positive means higher lows dominate
	HigherLows int
	LowerLows  int
}

// DetectTrend classifies the series by comparing successive local troughs:
// mostly higher lows means uptrend, mostly lower lows means downtrend.
// Requires at least 10 samples and 3 troughs.
func DetectTrend(prices []float64) TrendResult {
	if len(prices) < 10 {
		return TrendResult{Trend: model.TrendInsufficient}
	}

	var lows []float64
	for i := 1; i < len(prices)-1; i++ {
		if prices[i] < prices[i-1] && prices[i] < prices[i+1] {
			lows = append(lows, prices[i])
		}
	}
	if len(lows) < 3 {
		return TrendResult{Trend: model.TrendInsufficient}
	}

	var higher, lower int
	for i := 1; i < len(lows); i++ {
		if lows[i] > lows[i-1] {
			higher++
		} else {
			lower++
		}
	}

	total := higher + lower
	strength := 0.0
	if total > 0 {
		strength = float64(higher-lower) / float64(total)
	}

	trend := model.TrendSideways
	switch {
	case strength > 0.3:
		trend = model.TrendUp
	case strength < -0.3:
		trend = model.TrendDown
	}
	return TrendResult{Trend: trend, Strength: strength, HigherLows: higher, LowerLows: lower}
}
