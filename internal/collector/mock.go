package collector

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Chart *MarketChart
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrice(_ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockFetcher) FetchMarketChart(_ string, days int) (*MarketChart, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Chart != nil {
		return m.Chart, nil
	}
	return generateMockChart(m.Price, days), nil
}

// generateMockChart produces a gentle ramp into the current price with flat
// volume, enough to light up every indicator without tripping any of them.
func generateMockChart(basePrice float64, days int) *MarketChart {
	chart := &MarketChart{
		Prices:  make([]float64, days),
		Volumes: make([]float64, days),
	}
	for i := 0; i < days; i++ {
		chart.Prices[i] = basePrice * (1 + float64(i-days/2)*0.001)
		chart.Volumes[i] = 1000000
	}
	return chart
}
