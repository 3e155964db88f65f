package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CoinGeckoFetcher implements Fetcher using the CoinGecko public API.
type CoinGeckoFetcher struct {
	Client    *http.Client
	BaseURL   string
	Currency  string
	SymbolMap map[string]string // maps ticker symbol to CoinGecko coin id

	cacheFile string
	cacheTTL  time.Duration
}

// NewCoinGeckoFetcher creates a CoinGecko fetcher. cacheFile may be empty to
// disable the history cache.
func NewCoinGeckoFetcher(baseURL, currency, proxyURL, cacheFile string, cacheTTL time.Duration) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoFetcher{
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Currency: strings.ToLower(currency),
		SymbolMap: map[string]string{
			"BTC":  "bitcoin",
			"ETH":  "ethereum",
			"BNB":  "binancecoin",
			"SOL":  "solana",
			"ADA":  "cardano",
			"XRP":  "ripple",
			"DOGE": "dogecoin",
			"USDT": "tether",
			"USDC": "usd-coin",
		},
		cacheFile: cacheFile,
		cacheTTL:  cacheTTL,
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// coinID maps a ticker to a CoinGecko id, falling back to the lowercased
// symbol for coins not in the table.
func (f *CoinGeckoFetcher) coinID(symbol string) string {
	if id, ok := f.SymbolMap[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

func (f *CoinGeckoFetcher) get(path string, out any) error {
	req, err := http.NewRequest("GET", f.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("coingecko decode: %w", err)
	}
	return nil
}

// FetchPrice returns the current spot price in the configured currency.
func (f *CoinGeckoFetcher) FetchPrice(symbol string) (float64, error) {
	id := f.coinID(symbol)
	var out map[string]map[string]float64
	path := fmt.Sprintf("/simple/price?ids=%s&vs_currencies=%s",
		url.QueryEscape(id), url.QueryEscape(f.Currency))
	if err := f.get(path, &out); err != nil {
		return 0, err
	}
	price, ok := out[id][f.Currency]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("coingecko: no %s price for %s", f.Currency, id)
	}
	return price, nil
}

// marketChartResponse is the CoinGecko market_chart payload: [timestamp, value]
// pairs per series.
type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

type cachedChart struct {
	Symbol    string       `json:"symbol"`
	Days      int          `json:"days"`
	FetchedAt time.Time    `json:"fetched_at"`
	Chart     *MarketChart `json:"chart"`
}

// FetchMarketChart returns daily closing prices and volumes for the last
// `days` days, oldest first. Responses are cached on disk so restarts and
// tight tick intervals do not hammer the rate-limited public API.
func (f *CoinGeckoFetcher) FetchMarketChart(symbol string, days int) (*MarketChart, error) {
	if chart := f.loadCache(symbol, days); chart != nil {
		return chart, nil
	}

	id := f.coinID(symbol)
	path := fmt.Sprintf("/coins/%s/market_chart?vs_currency=%s&days=%d&interval=daily",
		url.PathEscape(id), url.QueryEscape(f.Currency), days)
	var out marketChartResponse
	if err := f.get(path, &out); err != nil {
		return nil, err
	}
	if len(out.Prices) == 0 {
		return nil, fmt.Errorf("coingecko: no history for %s", id)
	}

	chart := &MarketChart{
		Prices:  make([]float64, 0, len(out.Prices)),
		Volumes: make([]float64, 0, len(out.TotalVolumes)),
	}
	for _, p := range out.Prices {
		chart.Prices = append(chart.Prices, p[1])
	}
	for _, v := range out.TotalVolumes {
		chart.Volumes = append(chart.Volumes, v[1])
	}

	f.saveCache(symbol, days, chart)
	return chart, nil
}

func (f *CoinGeckoFetcher) loadCache(symbol string, days int) *MarketChart {
	if f.cacheFile == "" {
		return nil
	}
	data, err := os.ReadFile(f.cacheFile)
	if err != nil {
		return nil
	}
	var c cachedChart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	if c.Symbol != symbol || c.Days != days || c.Chart == nil {
		return nil
	}
	if time.Since(c.FetchedAt) > f.cacheTTL {
		return nil
	}
	return c.Chart
}

func (f *CoinGeckoFetcher) saveCache(symbol string, days int, chart *MarketChart) {
	if f.cacheFile == "" {
		return
	}
	c := cachedChart{Symbol: symbol, Days: days, FetchedAt: time.Now(), Chart: chart}
	data, err := json.Marshal(&c)
	if err != nil {
		return
	}
	if dir := filepath.Dir(f.cacheFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Msg("cannot create history cache dir")
			return
		}
	}
	if err := os.WriteFile(f.cacheFile, data, 0644); err != nil {
		log.Warn().Err(err).Msg("cannot write history cache")
	}
}
