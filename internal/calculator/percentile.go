package calculator

// Percentile ranks the current price within the historical min/max range.
// 0 is the cheapest observed, 100 the most expensive; thin history reads 50.
func Percentile(current float64, prices []float64) int {
	if len(prices) < 2 {
		return 50
	}
	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if max == min {
		return 50
	}
	pct := int((current - min) / (max - min) * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}
