// Package collector fetches spot prices and daily market history from the
// external price source.
package collector

// MarketChart is the daily history used by the indicator pipeline: prices and
// volumes are parallel slices, oldest first.
type MarketChart struct {
	Prices  []float64
	Volumes []float64
}

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchPrice(symbol string) (float64, error)
	FetchMarketChart(symbol string, days int) (*MarketChart, error)
	Name() string
}
