package calculator

// Levels holds support/resistance estimates derived from the recent window.
type Levels struct {
	Support    float64 // 2% buffer below the recent low
	Resistance float64 // 2% buffer above the recent high
	Pivot      float64 // (high + low + close) / 3
	RecentHigh float64
	RecentLow  float64
}

// SupportResistance derives levels from the last 30 samples. ok is false with
// fewer than 5 samples.
func SupportResistance(prices []float64) (Levels, bool) {
	if len(prices) < 5 {
		return Levels{}, false
	}

	window := prices
	if len(window) > 30 {
		window = window[len(window)-30:]
	}
	high, low := window[0], window[0]
	for _, p := range window {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	current := prices[len(prices)-1]
	return Levels{
		Support:    low * 0.98,
		Resistance: high * 1.02,
		Pivot:      (high + low + current) / 3,
		RecentHigh: high,
		RecentLow:  low,
	}, true
}
