package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	series "github.com/okian/pelota/internal/domain/series"
)

// defaultPriceURL is the CoinGecko daily market chart for bitcoin.
const defaultPriceURL = "https://api.coingecko.com/api/v3/coins/bitcoin/market_chart"

// marketChart is the slice of the CoinGecko payload we care about.
// Each price row is a [unix_ms, price] pair.
type marketChart struct {
	Prices [][]float64 `json:"prices"`
}

// PriceFeed pulls daily market prices from the CoinGecko chart API.
type PriceFeed struct {
	baseURL string
	client  *http.Client
}

// NewPriceFeed creates a live price feed.
func NewPriceFeed(opts ...Option) *PriceFeed {
	cfg := defaultConfig()
	cfg.baseURL = defaultPriceURL
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PriceFeed{
		baseURL: cfg.baseURL,
		client:  cfg.client,
	}
}

// Name returns the series name this feed produces.
func (f *PriceFeed) Name() string {
	return MetricPrice
}

// Fetch downloads the daily price series for the requested window.
func (f *PriceFeed) Fetch(ctx context.Context, days int) Result {
	start := time.Now()
	res := f.fetch(ctx, days)
	recordFetch(f.Name(), OriginLive, start, res.Err)
	return res
}

func (f *PriceFeed) fetch(ctx context.Context, days int) Result {
	if days <= 0 {
		days = defaultDays
	}

	u, err := url.Parse(f.baseURL)
	if err != nil {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: %w", ErrFetchFailed, err)}
	}
	q := u.Query()
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: %w", ErrFetchFailed, err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: %w", ErrFetchFailed, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: unexpected status %d from %s", ErrFetchFailed, resp.StatusCode, u.Host)}
	}

	var chart marketChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: %w", ErrDecodeFailed, err)}
	}

	// Rows with the wrong shape are dropped rather than failing the
	// series; the builder handles dirty values and stale timestamps.
	b := series.NewBuilder(MetricPrice)
	for _, row := range chart.Prices {
		if len(row) != 2 {
			continue
		}
		ts := time.UnixMilli(int64(row[0])).UTC()
		b.Add(ts, row[1])
	}

	s, err := b.Build()
	if err != nil {
		return Result{Origin: OriginLive, Err: fmt.Errorf("%w: %w", ErrNoData, err)}
	}
	return Result{Series: s, Origin: OriginLive}
}
